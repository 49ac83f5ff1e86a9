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

// CounterpartyType identifies who the payment was exchanged with
type CounterpartyType string

const (
	CounterpartyTypeCustomer CounterpartyType = "CUSTOMER"
	CounterpartyTypeSupplier CounterpartyType = "SUPPLIER"
)

// SourceDocumentType identifies the single document a payment was made against
type SourceDocumentType string

const (
	SourceDocumentTypeInvoice       SourceDocumentType = "INVOICE"
	SourceDocumentTypeBill          SourceDocumentType = "BILL"
	SourceDocumentTypePurchaseOrder SourceDocumentType = "PURCHASE_ORDER"
)

// PaymentAllocation records how much of a payment went to one invoice.
// It is a value object within the Payment aggregate, stored as JSONB.
type PaymentAllocation struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	AllocatedAt   time.Time       `json:"allocated_at"`
}

// PaymentAllocations is a slice of PaymentAllocation implementing GORM Scanner/Valuer for JSONB storage
type PaymentAllocations []PaymentAllocation

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentAllocations) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentAllocations) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentAllocations{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentAllocations: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentAllocations{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Payment is the aggregate root for money received or paid out.
// The sum of its allocations never exceeds the payment amount, and once the
// payment joins a deposit its amount, method and allocations are frozen.
type Payment struct {
	shared.BaseAggregateRoot
	PaymentNumber      string               `json:"payment_number"`
	CounterpartyType   CounterpartyType     `json:"counterparty_type"`
	CustomerID         *uuid.UUID           `json:"customer_id"`
	SupplierID         *uuid.UUID           `json:"supplier_id"`
	Amount             decimal.Decimal      `json:"amount"`
	FeeAmount          decimal.Decimal      `json:"fee_amount"`
	NetAmount          decimal.Decimal      `json:"net_amount"`
	Currency           valueobject.Currency `json:"currency"`
	PaymentDate        time.Time            `json:"payment_date"`
	Method             PaymentMethod        `json:"method"`
	Status             PaymentStatus        `json:"status"`
	CheckNumber        string               `json:"check_number"`
	TransactionID      string               `json:"transaction_id"`
	BankName           string               `json:"bank_name"`
	ARAccountID        *uuid.UUID           `json:"ar_account_id"`
	DepositToAccountID *uuid.UUID           `json:"deposit_to_account_id"`
	SourceDocumentType *SourceDocumentType  `json:"source_document_type"`
	SourceDocumentID   *uuid.UUID           `json:"source_document_id"`
	Allocations        PaymentAllocations   `json:"allocations"`
	IsDeposited        bool                 `json:"is_deposited"`
	DepositID          *uuid.UUID           `json:"deposit_id"`
	Memo               string               `json:"memo"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewCustomerPayment creates a payment received from a customer
func NewCustomerPayment(paymentNumber string, customerID uuid.UUID, amount, fee valueobject.Money, paymentDate time.Time, method PaymentMethod) (*Payment, error) {
	p, err := newPayment(paymentNumber, amount, fee, paymentDate, method)
	if err != nil {
		return nil, err
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	p.CounterpartyType = CounterpartyTypeCustomer
	p.CustomerID = &customerID
	return p, nil
}

// NewSupplierPayment creates a payment made to a supplier against one document
func NewSupplierPayment(paymentNumber string, supplierID uuid.UUID, amount valueobject.Money, paymentDate time.Time, method PaymentMethod, docType SourceDocumentType, docID uuid.UUID) (*Payment, error) {
	p, err := newPayment(paymentNumber, amount, valueobject.Zero(amount.Currency()), paymentDate, method)
	if err != nil {
		return nil, err
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if docType != SourceDocumentTypeBill && docType != SourceDocumentTypePurchaseOrder {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier payments must reference a bill or purchase order")
	}
	if docID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source document ID cannot be empty")
	}
	p.CounterpartyType = CounterpartyTypeSupplier
	p.SupplierID = &supplierID
	p.SourceDocumentType = &docType
	p.SourceDocumentID = &docID
	return p, nil
}

func newPayment(paymentNumber string, amount, fee valueobject.Money, paymentDate time.Time, method PaymentMethod) (*Payment, error) {
	if paymentNumber == "" || len(paymentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number must be 1-50 characters")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if fee.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fee amount cannot be negative")
	}
	if fee.Amount().GreaterThanOrEqual(amount.Amount()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fee amount must be less than the payment amount")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		Amount:            amount.Amount(),
		FeeAmount:         fee.Amount(),
		NetAmount:         amount.Amount().Sub(fee.Amount()),
		Currency:          amount.Currency(),
		PaymentDate:       paymentDate,
		Method:            method,
		Status:            PaymentStatusPending,
		Allocations:       PaymentAllocations{},
	}, nil
}

// AllocatedTotal returns the sum of all allocations
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.AppliedAmount)
	}
	return total
}

// UnallocatedAmount returns the amount not yet applied to any invoice
func (p *Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedTotal())
}

// AddAllocation records an allocation of part of this payment to an invoice
func (p *Payment) AddAllocation(invoiceID uuid.UUID, invoiceNumber string, amount valueobject.Money) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot allocate a %s payment", p.Status))
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Invoice ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.Amount().GreaterThan(p.UnallocatedAmount()) {
		return shared.NewDomainError("ALLOCATION_EXCEEDS_PAYMENT",
			fmt.Sprintf("Allocation %s exceeds unallocated amount %s",
				amount.StringFixed(2), p.UnallocatedAmount().StringFixed(2)))
	}

	p.Allocations = append(p.Allocations, PaymentAllocation{
		ID:            uuid.New(),
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		AppliedAmount: amount.Amount(),
		AllocatedAt:   time.Now(),
	})
	p.touch()
	return nil
}

// RemoveAllocation removes the allocation to the given invoice, returning the
// amount that was applied
func (p *Payment) RemoveAllocation(invoiceID uuid.UUID) (decimal.Decimal, error) {
	if err := p.ensureMutable(); err != nil {
		return decimal.Zero, err
	}
	for i, a := range p.Allocations {
		if a.InvoiceID == invoiceID {
			p.Allocations = append(p.Allocations[:i], p.Allocations[i+1:]...)
			p.touch()
			return a.AppliedAmount, nil
		}
	}
	return decimal.Zero, shared.ErrNotFound
}

// Complete marks the payment as completed
func (p *Payment) Complete() error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete a %s payment", p.Status))
	}
	p.Status = PaymentStatusCompleted
	p.AddDomainEvent(NewPaymentAppliedEvent(p))
	p.touch()
	return nil
}

// Fail marks the payment as failed
func (p *Payment) Fail() error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail a %s payment", p.Status))
	}
	p.Status = PaymentStatusFailed
	p.touch()
	return nil
}

// Cancel cancels the payment; deposited payments cannot be cancelled
func (p *Payment) Cancel() error {
	if p.IsDeposited {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a deposited payment")
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a %s payment", p.Status))
	}
	p.Status = PaymentStatusCancelled
	p.touch()
	return nil
}

// IsDepositable returns true if the payment can join a deposit
func (p *Payment) IsDepositable() bool {
	return p.Status == PaymentStatusCompleted && !p.IsDeposited
}

// MarkDeposited ties the payment to a deposit, freezing its monetary fields
func (p *Payment) MarkDeposited(depositID uuid.UUID) error {
	if p.IsDeposited {
		return shared.NewDomainError("PAYMENT_ALREADY_DEPOSITED",
			fmt.Sprintf("Payment %s already belongs to a deposit", p.PaymentNumber))
	}
	if p.Status != PaymentStatusCompleted {
		return shared.NewDomainError("PAYMENT_NOT_ELIGIBLE",
			fmt.Sprintf("Payment %s is %s, only completed payments can be deposited", p.PaymentNumber, p.Status))
	}
	if depositID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Deposit ID cannot be empty")
	}

	p.IsDeposited = true
	p.DepositID = &depositID
	p.touch()
	return nil
}

// ReleaseFromDeposit detaches the payment when its deposit is voided
func (p *Payment) ReleaseFromDeposit() error {
	if !p.IsDeposited {
		return shared.NewDomainError("INVALID_STATE", "Payment is not part of a deposit")
	}
	p.IsDeposited = false
	p.DepositID = nil
	p.touch()
	return nil
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Amount, p.Currency)
	return m
}

func (p *Payment) ensureMutable() error {
	if p.IsDeposited {
		return shared.NewDomainError("INVALID_STATE", "Deposited payments are immutable")
	}
	return nil
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
