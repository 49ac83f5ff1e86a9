package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeInvoice = "Invoice"
	AggregateTypeBill    = "Bill"
	AggregateTypePayment = "Payment"
	AggregateTypeDeposit = "Deposit"
)

// Event type constants
const (
	EventTypeInvoiceCreated   = "InvoiceCreated"
	EventTypeInvoiceFinalized = "InvoiceFinalized"
	EventTypeInvoicePaid      = "InvoicePaid"
	EventTypeBillPaid         = "BillPaid"
	EventTypePaymentApplied   = "PaymentApplied"
	EventTypeDepositRecorded  = "DepositRecorded"
	EventTypeDepositVoided    = "DepositVoided"
)

// InvoiceCreatedEvent is published when a draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
	}
}

// InvoiceFinalizedEvent is published when an invoice opens for payment
type InvoiceFinalizedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceFinalizedEvent creates a new InvoiceFinalizedEvent
func NewInvoiceFinalizedEvent(inv *Invoice) *InvoiceFinalizedEvent {
	return &InvoiceFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceFinalized, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoicePaidEvent is published when an invoice balance reaches zero
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, paymentID uuid.UUID) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PaymentID:       paymentID,
		TotalAmount:     inv.TotalAmount,
	}
}

// BillPaidEvent is published when a bill balance reaches zero or below
type BillPaidEvent struct {
	shared.BaseDomainEvent
	BillID         uuid.UUID       `json:"bill_id"`
	BillNumber     string          `json:"bill_number"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	SupplierCredit decimal.Decimal `json:"supplier_credit"`
}

// NewBillPaidEvent creates a new BillPaidEvent
func NewBillPaidEvent(b *Bill, paymentID uuid.UUID) *BillPaidEvent {
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaid, AggregateTypeBill, b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		PaymentID:       paymentID,
		SupplierCredit:  b.SupplierCredit(),
	}
}

// PaymentAppliedEvent is published when a payment completes with its
// allocations in place
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID       uuid.UUID       `json:"payment_id"`
	PaymentNumber   string          `json:"payment_number"`
	Amount          decimal.Decimal `json:"amount"`
	AllocationCount int             `json:"allocation_count"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(p *Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		Amount:          p.Amount,
		AllocationCount: len(p.Allocations),
	}
}

// DepositRecordedEvent is published when payments are batched into a deposit
type DepositRecordedEvent struct {
	shared.BaseDomainEvent
	DepositID     uuid.UUID       `json:"deposit_id"`
	DepositNumber string          `json:"deposit_number"`
	BankAccountID uuid.UUID       `json:"bank_account_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentCount  int             `json:"payment_count"`
}

// NewDepositRecordedEvent creates a new DepositRecordedEvent
func NewDepositRecordedEvent(d *Deposit) *DepositRecordedEvent {
	return &DepositRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositRecorded, AggregateTypeDeposit, d.ID),
		DepositID:       d.ID,
		DepositNumber:   d.DepositNumber,
		BankAccountID:   d.BankAccountID,
		TotalAmount:     d.TotalAmount,
		PaymentCount:    len(d.Members),
	}
}

// DepositVoidedEvent is published when a deposit is voided
type DepositVoidedEvent struct {
	shared.BaseDomainEvent
	DepositID     uuid.UUID `json:"deposit_id"`
	DepositNumber string    `json:"deposit_number"`
	Reason        string    `json:"reason"`
}

// NewDepositVoidedEvent creates a new DepositVoidedEvent
func NewDepositVoidedEvent(d *Deposit) *DepositVoidedEvent {
	return &DepositVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositVoided, AggregateTypeDeposit, d.ID),
		DepositID:       d.ID,
		DepositNumber:   d.DepositNumber,
		Reason:          d.VoidReason,
	}
}
