package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// Bill is the aggregate root for money owed to a supplier.
// Unlike customer invoices, the single-document payment path allows
// overpayment: the balance goes negative and is carried as supplier credit.
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber   string               `json:"bill_number"`
	SupplierID   uuid.UUID            `json:"supplier_id"`
	SupplierName string               `json:"supplier_name"`
	BillDate     time.Time            `json:"bill_date"`
	DueDate      *time.Time           `json:"due_date"`
	Currency     valueobject.Currency `json:"currency"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	PaidAmount   decimal.Decimal      `json:"paid_amount"`
	BalanceDue   decimal.Decimal      `json:"balance_due"`
	Status       DocumentStatus       `json:"status"`
	Reference    string               `json:"reference"`
	Memo         string               `json:"memo"`
	PaidAt       *time.Time           `json:"paid_at"`
}

// TableName returns the table name for GORM
func (Bill) TableName() string {
	return "bills"
}

// NewBill creates a new draft bill with the given total
func NewBill(billNumber string, supplierID uuid.UUID, supplierName string, billDate time.Time, dueDate *time.Time, total valueobject.Money) (*Bill, error) {
	if billNumber == "" || len(billNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number must be 1-50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bill total must be positive")
	}

	bill := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        billNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		BillDate:          billDate,
		DueDate:           dueDate,
		Currency:          total.Currency(),
		TotalAmount:       total.Amount(),
		PaidAmount:        decimal.Zero,
		BalanceDue:        total.Amount(),
		Status:            DocumentStatusDraft,
	}

	return bill, nil
}

// Approve moves a draft bill to PENDING, opening it for payment
func (b *Bill) Approve() error {
	if b.Status != DocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve bill in %s status", b.Status))
	}
	b.Status = DocumentStatusPending
	b.touch()
	return nil
}

// ApplyPayment applies a payment amount to the bill. The amount may exceed
// the balance due; the excess becomes supplier credit (negative balance).
func (b *Bill) ApplyPayment(amount valueobject.Money, paymentID uuid.UUID) error {
	if !b.Status.CanApplyPayment() {
		return shared.NewDomainError("DOCUMENT_NOT_OPEN", fmt.Sprintf("Cannot apply payment to bill in %s status", b.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paymentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}

	b.PaidAmount = b.PaidAmount.Add(amount.Amount())
	b.BalanceDue = b.TotalAmount.Sub(b.PaidAmount)
	b.refreshStatus()

	if b.Status == DocumentStatusPaid && b.PaidAt == nil {
		now := time.Now()
		b.PaidAt = &now
		b.AddDomainEvent(NewBillPaidEvent(b, paymentID))
	}

	b.touch()
	return nil
}

// ReversePayment backs out a previously applied amount
func (b *Bill) ReversePayment(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be positive")
	}
	if amount.Amount().GreaterThan(b.PaidAmount) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Reversal %s exceeds paid amount %s", amount.StringFixed(2), b.PaidAmount.StringFixed(2)))
	}

	b.PaidAmount = b.PaidAmount.Sub(amount.Amount())
	b.BalanceDue = b.TotalAmount.Sub(b.PaidAmount)
	b.PaidAt = nil
	b.refreshStatus()
	b.touch()
	return nil
}

// SupplierCredit returns the overpaid amount, zero when not overpaid
func (b *Bill) SupplierCredit() decimal.Decimal {
	if b.BalanceDue.IsNegative() {
		return b.BalanceDue.Neg()
	}
	return decimal.Zero
}

// EffectiveStatus returns the status with the overdue override applied
func (b *Bill) EffectiveStatus(now time.Time) DocumentStatus {
	if b.Status == DocumentStatusDraft {
		return DocumentStatusDraft
	}
	return DerivePayableStatus(b.TotalAmount, b.PaidAmount, b.DueDate, now)
}

// IsOverdue returns true if the bill is open and past its due date
func (b *Bill) IsOverdue(now time.Time) bool {
	return b.EffectiveStatus(now) == DocumentStatusOverdue
}

func (b *Bill) refreshStatus() {
	switch {
	case b.PaidAmount.LessThanOrEqual(decimal.Zero):
		b.Status = DocumentStatusPending
	case b.PaidAmount.LessThan(b.TotalAmount):
		b.Status = DocumentStatusPartial
	default:
		b.Status = DocumentStatusPaid
	}
}

func (b *Bill) touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
