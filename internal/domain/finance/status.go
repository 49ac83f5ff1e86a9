package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus represents the payment status of a financial document
type DocumentStatus string

const (
	DocumentStatusDraft   DocumentStatus = "DRAFT"   // Not yet finalized, no balance owed
	DocumentStatusUnpaid  DocumentStatus = "UNPAID"  // Finalized invoice, nothing applied
	DocumentStatusPending DocumentStatus = "PENDING" // Finalized bill/PO, nothing applied
	DocumentStatusPartial DocumentStatus = "PARTIAL" // 0 < applied < total
	DocumentStatusPaid    DocumentStatus = "PAID"    // applied >= total
	DocumentStatusOverdue DocumentStatus = "OVERDUE" // Derived on read, never persisted
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusUnpaid, DocumentStatusPending,
		DocumentStatusPartial, DocumentStatusPaid, DocumentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsOpen returns true if the document still carries a collectible balance
func (s DocumentStatus) IsOpen() bool {
	return s == DocumentStatusUnpaid || s == DocumentStatusPending || s == DocumentStatusPartial
}

// CanApplyPayment returns true if payments can be applied in this status
func (s DocumentStatus) CanApplyPayment() bool {
	return s.IsOpen()
}

// DeriveInvoiceStatus recomputes an invoice's status from its monetary state.
// Pure and idempotent; the caller persists the result. OVERDUE is applied as
// an override when the document is open and past due; paid documents are
// never overdue.
func DeriveInvoiceStatus(total, applied decimal.Decimal, dueDate *time.Time, now time.Time) DocumentStatus {
	return deriveStatus(total, applied, DocumentStatusUnpaid, dueDate, now)
}

// DerivePayableStatus recomputes a bill or purchase order status. The open
// state is PENDING on the supplier side; otherwise the rule is identical to
// the invoice rule. An overpaid payable (applied > total) is PAID with a
// negative balance carried as supplier credit.
func DerivePayableStatus(total, applied decimal.Decimal, dueDate *time.Time, now time.Time) DocumentStatus {
	return deriveStatus(total, applied, DocumentStatusPending, dueDate, now)
}

func deriveStatus(total, applied decimal.Decimal, openStatus DocumentStatus, dueDate *time.Time, now time.Time) DocumentStatus {
	var status DocumentStatus
	switch {
	case applied.LessThanOrEqual(decimal.Zero):
		status = openStatus
	case applied.LessThan(total):
		status = DocumentStatusPartial
	default:
		status = DocumentStatusPaid
	}

	if status != DocumentStatusPaid && dueDate != nil && now.After(*dueDate) {
		return DocumentStatusOverdue
	}
	return status
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if the payment is in a terminal state
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer,
		PaymentMethodCreditCard, PaymentMethodOther:
		return true
	}
	return false
}
