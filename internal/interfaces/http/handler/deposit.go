package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	financeapp "github.com/smberp/backend/internal/application/finance"
)

// DepositHandler handles bank deposit endpoints
type DepositHandler struct {
	BaseHandler
	depositService *financeapp.DepositService
}

// NewDepositHandler creates a new DepositHandler
func NewDepositHandler(depositService *financeapp.DepositService) *DepositHandler {
	return &DepositHandler{depositService: depositService}
}

// RecordDepositRequest represents a request to batch payments into a deposit.
// TotalAmount is the caller's expected total; the server recomputes the real
// total from the member payments and rejects the batch on any mismatch.
type RecordDepositRequest struct {
	BankAccountID uuid.UUID       `json:"bank_account_id" binding:"required"`
	DepositDate   time.Time       `json:"deposit_date" binding:"required"`
	PaymentIDs    []uuid.UUID     `json:"payment_ids" binding:"required,min=1"`
	TotalAmount   decimal.Decimal `json:"total_amount" binding:"required"`
	Memo          string          `json:"memo"`
}

// VoidDepositRequest represents a request to void a deposit
type VoidDepositRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Record batches undeposited payments into a bank deposit
func (h *DepositHandler) Record(c *gin.Context) {
	var req RecordDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deposit, err := h.depositService.RecordDeposit(c.Request.Context(), financeapp.RecordDepositRequest{
		BankAccountID: req.BankAccountID,
		DepositDate:   req.DepositDate,
		PaymentIDs:    req.PaymentIDs,
		ClientTotal:   req.TotalAmount,
		Memo:          req.Memo,
		ActorID:       getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, deposit)
}

// Void voids a deposit and releases its member payments
func (h *DepositHandler) Void(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid deposit ID")
		return
	}

	var req VoidDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deposit, err := h.depositService.VoidDeposit(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposit)
}

// Get returns a deposit by ID
func (h *DepositHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid deposit ID")
		return
	}

	deposit, err := h.depositService.GetDepositByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposit)
}

// List returns deposits with pagination
func (h *DepositHandler) List(c *gin.Context) {
	req, filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deposits, total, err := h.depositService.ListDeposits(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, deposits, total, req.Page, req.PageSize)
}
