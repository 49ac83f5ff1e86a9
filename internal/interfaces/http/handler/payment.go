package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	financeapp "github.com/smberp/backend/internal/application/finance"
	"github.com/smberp/backend/internal/domain/finance"
)

// PaymentHandler handles customer payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InvoicePaymentRequest is one caller-specified allocation line
type InvoicePaymentRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"payment_amount" binding:"required"`
}

// ApplyPaymentRequest represents a request to apply a customer payment.
// When invoices are listed the amounts are applied exactly as given; without
// them the payment fills the customer's open invoices oldest first.
type ApplyPaymentRequest struct {
	CustomerID         uuid.UUID               `json:"customer_id" binding:"required"`
	Amount             decimal.Decimal         `json:"payment_amount" binding:"required"`
	FeeAmount          decimal.Decimal         `json:"fee_amount"`
	PaymentDate        time.Time               `json:"payment_date" binding:"required"`
	Method             string                  `json:"payment_method" binding:"required,oneof=CASH CHECK BANK_TRANSFER CREDIT_CARD OTHER"`
	Status             string                  `json:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
	Strategy           string                  `json:"strategy" binding:"omitempty,oneof=FIFO MANUAL"`
	ARAccountID        uuid.UUID               `json:"ar_account_id" binding:"required"`
	DepositToAccountID uuid.UUID               `json:"deposit_to_account_id" binding:"required"`
	Invoices           []InvoicePaymentRequest `json:"invoices"`
	ReferenceNumber    string                  `json:"reference_number"`
	Memo               string                  `json:"memo"`
}

// Apply applies a customer payment across open invoices.
// The X-Request-ID header doubles as the idempotency key.
func (h *PaymentHandler) Apply(c *gin.Context) {
	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	strategy := finance.AllocationStrategyTypeFIFO
	switch {
	case req.Strategy != "":
		strategy = finance.AllocationStrategyType(req.Strategy)
	case len(req.Invoices) > 0:
		strategy = finance.AllocationStrategyTypeManual
	}

	appReq := financeapp.ApplyPaymentRequest{
		CustomerID:         req.CustomerID,
		Amount:             req.Amount,
		FeeAmount:          req.FeeAmount,
		PaymentDate:        req.PaymentDate,
		Method:             finance.PaymentMethod(req.Method),
		Strategy:           strategy,
		ARAccountID:        &req.ARAccountID,
		DepositToAccountID: &req.DepositToAccountID,
		CheckNumber:        req.ReferenceNumber,
		Memo:               req.Memo,
		Pending:            req.Status == string(finance.PaymentStatusPending),
		RequestKey:         getRequestID(c),
		ActorID:            getActorID(c),
	}
	for _, a := range req.Invoices {
		appReq.Allocations = append(appReq.Allocations, financeapp.ManualAllocationInput{
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount,
		})
	}

	result, err := h.paymentService.ApplyPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get returns a payment by ID
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// List returns payments with pagination
func (h *PaymentHandler) List(c *gin.Context) {
	req, filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, payments, total, req.Page, req.PageSize)
}

// ListUndeposited returns completed customer payments awaiting deposit
func (h *PaymentHandler) ListUndeposited(c *gin.Context) {
	payments, err := h.paymentService.ListUndepositedPayments(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Cancel cancels a pending payment
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.paymentService.CancelPayment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
