package finance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// InvoiceLine is a value object within the Invoice aggregate, stored as JSONB
type InvoiceLine struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceLines is a slice of InvoiceLine implementing GORM Scanner/Valuer for JSONB storage
type InvoiceLines []InvoiceLine

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l InvoiceLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *InvoiceLines) Scan(value interface{}) error {
	if value == nil {
		*l = InvoiceLines{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceLines: unsupported type")
	}

	if len(bytes) == 0 {
		*l = InvoiceLines{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Invoice is the aggregate root for money owed by a customer.
// BalanceDue always equals TotalAmount minus PaidAmount; both are mutated
// only through the allocation methods so the invariant cannot drift.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string               `json:"invoice_number"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	CustomerName   string               `json:"customer_name"`
	InvoiceDate    time.Time            `json:"invoice_date"`
	DueDate        *time.Time           `json:"due_date"`
	Currency       valueobject.Currency `json:"currency"`
	Lines          InvoiceLines         `json:"lines"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	TaxAmount      decimal.Decimal      `json:"tax_amount"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	ShippingAmount decimal.Decimal      `json:"shipping_amount"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	PaidAmount     decimal.Decimal      `json:"paid_amount"`
	BalanceDue     decimal.Decimal      `json:"balance_due"`
	Status         DocumentStatus       `json:"status"`
	Memo           string               `json:"memo"`
	PaidAt         *time.Time           `json:"paid_at"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice
func NewInvoice(invoiceNumber string, customerID uuid.UUID, customerName string, invoiceDate time.Time, dueDate *time.Time) (*Invoice, error) {
	if invoiceNumber == "" || len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number must be 1-50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if dueDate != nil && dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
		Currency:          valueobject.DefaultCurrency,
		Lines:             InvoiceLines{},
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		ShippingAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		BalanceDue:        decimal.Zero,
		Status:            DocumentStatusDraft,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AddLine appends a line item and recalculates totals.
// Line edits are rejected once any payment has been applied.
func (inv *Invoice) AddLine(itemID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if description == "" {
		return shared.NewDomainError("INVALID_LINE", "Line description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_LINE", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", "Line unit price cannot be negative")
	}

	inv.Lines = append(inv.Lines, InvoiceLine{
		ID:          uuid.New(),
		ItemID:      itemID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
	})
	inv.recalculateTotals()
	inv.touch()
	return nil
}

// RemoveLine removes a line item by ID and recalculates totals
func (inv *Invoice) RemoveLine(lineID uuid.UUID) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	for i, line := range inv.Lines {
		if line.ID == lineID {
			inv.Lines = append(inv.Lines[:i], inv.Lines[i+1:]...)
			inv.recalculateTotals()
			inv.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetCharges sets tax, discount and shipping amounts and recalculates totals
func (inv *Invoice) SetCharges(tax, discount, shipping decimal.Decimal) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if tax.IsNegative() || discount.IsNegative() || shipping.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Charges cannot be negative")
	}

	inv.TaxAmount = tax
	inv.DiscountAmount = discount
	inv.ShippingAmount = shipping
	inv.recalculateTotals()
	inv.touch()
	return nil
}

// Finalize moves a draft invoice to UNPAID, opening it for payment
func (inv *Invoice) Finalize() error {
	if inv.Status != DocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize invoice in %s status", inv.Status))
	}
	if len(inv.Lines) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot finalize an invoice with no lines")
	}
	if inv.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}

	inv.Status = DocumentStatusUnpaid
	inv.touch()
	inv.AddDomainEvent(NewInvoiceFinalizedEvent(inv))
	return nil
}

// ApplyAllocation applies part of a payment to this invoice.
// The amount must not exceed the balance due; overpayment of a customer
// invoice is rejected rather than carried as credit.
func (inv *Invoice) ApplyAllocation(amount valueobject.Money, paymentID uuid.UUID) error {
	if !inv.Status.CanApplyPayment() {
		return shared.NewDomainError("DOCUMENT_NOT_OPEN", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.BalanceDue) {
		return shared.NewDomainError("ALLOCATION_EXCEEDS_BALANCE",
			fmt.Sprintf("Allocation %s exceeds balance due %s", amount.StringFixed(2), inv.BalanceDue.StringFixed(2)))
	}
	if paymentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)
	inv.refreshStatus()

	if inv.Status == DocumentStatusPaid {
		now := time.Now()
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv, paymentID))
	}

	inv.touch()
	return nil
}

// ReverseAllocation backs out a previously applied amount, restoring the
// balance exactly to its pre-allocation value.
func (inv *Invoice) ReverseAllocation(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.PaidAmount) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Reversal %s exceeds paid amount %s", amount.StringFixed(2), inv.PaidAmount.StringFixed(2)))
	}

	inv.PaidAmount = inv.PaidAmount.Sub(amount.Amount())
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)
	inv.PaidAt = nil
	inv.refreshStatus()
	inv.touch()
	return nil
}

// EffectiveStatus returns the status with the overdue override applied.
// OVERDUE is derived on read and never persisted.
func (inv *Invoice) EffectiveStatus(now time.Time) DocumentStatus {
	if inv.Status == DocumentStatusDraft {
		return DocumentStatusDraft
	}
	return DeriveInvoiceStatus(inv.TotalAmount, inv.PaidAmount, inv.DueDate, now)
}

// IsOverdue returns true if the invoice is open and past its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.EffectiveStatus(now) == DocumentStatusOverdue
}

// DaysOverdue returns the number of days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !inv.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(*inv.DueDate).Hours() / 24)
}

// HasPayments returns true if any amount has been applied
func (inv *Invoice) HasPayments() bool {
	return inv.PaidAmount.GreaterThan(decimal.Zero)
}

// IsDraft returns true if the invoice has not been finalized
func (inv *Invoice) IsDraft() bool {
	return inv.Status == DocumentStatusDraft
}

// GetBalanceDueMoney returns the balance due as Money
func (inv *Invoice) GetBalanceDueMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.BalanceDue, inv.Currency)
	return m
}

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.TotalAmount, inv.Currency)
	return m
}

func (inv *Invoice) ensureEditable() error {
	if inv.HasPayments() {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit an invoice with applied payments")
	}
	if inv.Status != DocumentStatusDraft && inv.Status != DocumentStatusUnpaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit invoice in %s status", inv.Status))
	}
	return nil
}

// recalculateTotals rederives subtotal, total and balance from the lines.
// total = subtotal + tax - discount + shipping
func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	for _, line := range inv.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	inv.Subtotal = subtotal
	inv.TotalAmount = subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount).Add(inv.ShippingAmount)
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)
	if inv.Status != DocumentStatusDraft {
		inv.refreshStatus()
	}
}

func (inv *Invoice) refreshStatus() {
	switch {
	case inv.PaidAmount.LessThanOrEqual(decimal.Zero):
		inv.Status = DocumentStatusUnpaid
	case inv.PaidAmount.LessThan(inv.TotalAmount):
		inv.Status = DocumentStatusPartial
	default:
		inv.Status = DocumentStatusPaid
	}
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}
