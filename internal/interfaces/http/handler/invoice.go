package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	financeapp "github.com/smberp/backend/internal/application/finance"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *financeapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *financeapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceLineRequest is one invoice line in a create request
type InvoiceLineRequest struct {
	ItemID      *uuid.UUID      `json:"item_id"`
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CustomerID     uuid.UUID            `json:"customer_id" binding:"required"`
	InvoiceDate    time.Time            `json:"invoice_date" binding:"required"`
	DueDate        *time.Time           `json:"due_date"`
	Lines          []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	TaxAmount      decimal.Decimal      `json:"tax_amount"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	ShippingAmount decimal.Decimal      `json:"shipping_amount"`
	Memo           string               `json:"memo"`
	Finalize       bool                 `json:"finalize"`
}

// Create creates an invoice, optionally finalizing it in the same call
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := financeapp.CreateInvoiceRequest{
		CustomerID:     req.CustomerID,
		InvoiceDate:    req.InvoiceDate,
		DueDate:        req.DueDate,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		ShippingAmount: req.ShippingAmount,
		Memo:           req.Memo,
		Finalize:       req.Finalize,
		ActorID:        getActorID(c),
	}
	for _, line := range req.Lines {
		appReq.Lines = append(appReq.Lines, financeapp.InvoiceLineInput{
			ItemID:      line.ItemID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Finalize moves a draft invoice into the open receivables pool
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.FinalizeInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Get returns an invoice by ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List returns invoices with pagination
func (h *InvoiceHandler) List(c *gin.Context) {
	req, filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, req.Page, req.PageSize)
}

// ListOpenByCustomer returns a customer's invoices that still carry a balance,
// oldest due date first
func (h *InvoiceHandler) ListOpenByCustomer(c *gin.Context) {
	customerID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	invoices, err := h.invoiceService.ListOpenInvoicesByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}
