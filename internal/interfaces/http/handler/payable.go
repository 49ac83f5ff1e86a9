package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	financeapp "github.com/smberp/backend/internal/application/finance"
	"github.com/smberp/backend/internal/domain/finance"
)

// PayableHandler handles supplier bill and purchase order endpoints
type PayableHandler struct {
	BaseHandler
	payableService *financeapp.PayableService
}

// NewPayableHandler creates a new PayableHandler
func NewPayableHandler(payableService *financeapp.PayableService) *PayableHandler {
	return &PayableHandler{payableService: payableService}
}

// CreateBillRequest represents a request to record a supplier bill
type CreateBillRequest struct {
	SupplierID string          `json:"supplier_id" binding:"required,uuid"`
	BillDate   time.Time       `json:"bill_date" binding:"required"`
	DueDate    *time.Time      `json:"due_date"`
	Total      decimal.Decimal `json:"total" binding:"required"`
	Reference  string          `json:"reference"`
	Memo       string          `json:"memo"`
}

// CreatePurchaseOrderRequest represents a request to record a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID string          `json:"supplier_id" binding:"required,uuid"`
	OrderDate  time.Time       `json:"order_date" binding:"required"`
	DueDate    *time.Time      `json:"due_date"`
	Total      decimal.Decimal `json:"total" binding:"required"`
	Memo       string          `json:"memo"`
}

// PayDocumentRequest represents a single-document supplier payment
type PayDocumentRequest struct {
	SupplierID  string          `json:"supplier_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Method      string          `json:"method" binding:"required,oneof=CASH CHECK BANK_TRANSFER CREDIT_CARD OTHER"`
	Reference   string          `json:"reference"`
	Memo        string          `json:"memo"`
}

// CreateBill records an approved supplier bill
func (h *PayableHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.payableService.CreateBill(c.Request.Context(), financeapp.CreateBillRequest{
		SupplierID: mustParseUUID(req.SupplierID),
		BillDate:   req.BillDate,
		DueDate:    req.DueDate,
		Total:      req.Total,
		Reference:  req.Reference,
		Memo:       req.Memo,
		ActorID:    getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// GetBill returns a bill by ID
func (h *PayableHandler) GetBill(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.payableService.GetBillByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// ListBills returns bills with pagination
func (h *PayableHandler) ListBills(c *gin.Context) {
	req, filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bills, total, err := h.payableService.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, bills, total, req.Page, req.PageSize)
}

// PayBill applies a supplier payment against a single bill
func (h *PayableHandler) PayBill(c *gin.Context) {
	h.paySupplierDocument(c, finance.SourceDocumentTypeBill)
}

// CreatePurchaseOrder records an approved purchase order
func (h *PayableHandler) CreatePurchaseOrder(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.payableService.CreatePurchaseOrder(c.Request.Context(), financeapp.CreatePurchaseOrderRequest{
		SupplierID: mustParseUUID(req.SupplierID),
		OrderDate:  req.OrderDate,
		DueDate:    req.DueDate,
		Total:      req.Total,
		Memo:       req.Memo,
		ActorID:    getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetPurchaseOrder returns a purchase order by ID
func (h *PayableHandler) GetPurchaseOrder(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.payableService.GetPurchaseOrderByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListPurchaseOrders returns purchase orders with pagination
func (h *PayableHandler) ListPurchaseOrders(c *gin.Context) {
	req, filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, total, err := h.payableService.ListPurchaseOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, req.Page, req.PageSize)
}

// PayPurchaseOrder applies a supplier payment against a single purchase order
func (h *PayableHandler) PayPurchaseOrder(c *gin.Context) {
	h.paySupplierDocument(c, finance.SourceDocumentTypePurchaseOrder)
}

// ListOpenSupplierDocuments returns a supplier's open bills and purchase orders
func (h *PayableHandler) ListOpenSupplierDocuments(c *gin.Context) {
	supplierID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	documents, err := h.payableService.ListOpenSupplierDocuments(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, documents)
}

func (h *PayableHandler) paySupplierDocument(c *gin.Context, docType finance.SourceDocumentType) {
	documentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req PayDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.payableService.PaySupplierDocument(c.Request.Context(), financeapp.PaySupplierDocumentRequest{
		SupplierID:   mustParseUUID(req.SupplierID),
		DocumentType: docType,
		DocumentID:   documentID,
		Amount:       req.Amount,
		PaymentDate:  req.PaymentDate,
		Method:       finance.PaymentMethod(req.Method),
		Reference:    req.Reference,
		Memo:         req.Memo,
		ActorID:      getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
