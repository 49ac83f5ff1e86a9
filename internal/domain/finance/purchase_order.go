package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// PurchaseOrder is the aggregate root for an order placed with a supplier.
// Payment behavior mirrors Bill: single-document payments may overpay and
// the excess is carried as supplier credit.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber  string               `json:"order_number"`
	SupplierID   uuid.UUID            `json:"supplier_id"`
	SupplierName string               `json:"supplier_name"`
	OrderDate    time.Time            `json:"order_date"`
	DueDate      *time.Time           `json:"due_date"`
	Currency     valueobject.Currency `json:"currency"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	PaidAmount   decimal.Decimal      `json:"paid_amount"`
	BalanceDue   decimal.Decimal      `json:"balance_due"`
	Status       DocumentStatus       `json:"status"`
	Memo         string               `json:"memo"`
	PaidAt       *time.Time           `json:"paid_at"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new draft purchase order with the given total
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID, supplierName string, orderDate time.Time, dueDate *time.Time, total valueobject.Money) (*PurchaseOrder, error) {
	if orderNumber == "" || len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number must be 1-50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total must be positive")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		OrderDate:         orderDate,
		DueDate:           dueDate,
		Currency:          total.Currency(),
		TotalAmount:       total.Amount(),
		PaidAmount:        decimal.Zero,
		BalanceDue:        total.Amount(),
		Status:            DocumentStatusDraft,
	}, nil
}

// Approve moves a draft order to PENDING, opening it for payment
func (po *PurchaseOrder) Approve() error {
	if po.Status != DocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve order in %s status", po.Status))
	}
	po.Status = DocumentStatusPending
	po.touch()
	return nil
}

// ApplyPayment applies a payment amount to the order, overpayment allowed
func (po *PurchaseOrder) ApplyPayment(amount valueobject.Money, paymentID uuid.UUID) error {
	if !po.Status.CanApplyPayment() {
		return shared.NewDomainError("DOCUMENT_NOT_OPEN", fmt.Sprintf("Cannot apply payment to order in %s status", po.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paymentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}

	po.PaidAmount = po.PaidAmount.Add(amount.Amount())
	po.BalanceDue = po.TotalAmount.Sub(po.PaidAmount)
	po.refreshStatus()

	if po.Status == DocumentStatusPaid && po.PaidAt == nil {
		now := time.Now()
		po.PaidAt = &now
	}

	po.touch()
	return nil
}

// SupplierCredit returns the overpaid amount, zero when not overpaid
func (po *PurchaseOrder) SupplierCredit() decimal.Decimal {
	if po.BalanceDue.IsNegative() {
		return po.BalanceDue.Neg()
	}
	return decimal.Zero
}

// EffectiveStatus returns the status with the overdue override applied
func (po *PurchaseOrder) EffectiveStatus(now time.Time) DocumentStatus {
	if po.Status == DocumentStatusDraft {
		return DocumentStatusDraft
	}
	return DerivePayableStatus(po.TotalAmount, po.PaidAmount, po.DueDate, now)
}

func (po *PurchaseOrder) refreshStatus() {
	switch {
	case po.PaidAmount.LessThanOrEqual(decimal.Zero):
		po.Status = DocumentStatusPending
	case po.PaidAmount.LessThan(po.TotalAmount):
		po.Status = DocumentStatusPartial
	default:
		po.Status = DocumentStatusPaid
	}
}

func (po *PurchaseOrder) touch() {
	po.UpdatedAt = time.Now()
	po.IncrementVersion()
}
