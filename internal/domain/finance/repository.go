package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindByIDs finds multiple invoices by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Invoice, error)

	// FindAll finds all invoices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// FindOpenByCustomer finds invoices for a customer that still carry a
	// balance, ordered by due date then creation date
	FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]Invoice, error)

	// Save persists an invoice (create or update)
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock persists an invoice with an optimistic version check.
	// Returns CONCURRENT_MODIFICATION if the stored version has moved on.
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts invoices per persisted status
	CountByStatus(ctx context.Context) (map[DocumentStatus]int64, error)

	// SumOutstanding sums balance due across open invoices
	SumOutstanding(ctx context.Context) (decimal.Decimal, error)

	// SumOverdue sums balance due across open invoices past due as of the
	// given time
	SumOverdue(ctx context.Context, asOf time.Time) (decimal.Decimal, error)

	// GenerateInvoiceNumber generates the next invoice number
	GenerateInvoiceNumber(ctx context.Context) (string, error)
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByID finds a bill by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindAll finds all bills matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Bill, error)

	// FindOpenBySupplier finds bills for a supplier that still carry a balance
	FindOpenBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Bill, error)

	// Save persists a bill (create or update)
	Save(ctx context.Context, bill *Bill) error

	// SaveWithLock persists a bill with an optimistic version check
	SaveWithLock(ctx context.Context, bill *Bill) error

	// Count counts bills matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumOutstanding sums balance due across open bills
	SumOutstanding(ctx context.Context) (decimal.Decimal, error)

	// GenerateBillNumber generates the next bill number
	GenerateBillNumber(ctx context.Context) (string, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll finds all purchase orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// FindOpenBySupplier finds orders for a supplier that still carry a balance
	FindOpenBySupplier(ctx context.Context, supplierID uuid.UUID) ([]PurchaseOrder, error)

	// Save persists a purchase order (create or update)
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock persists a purchase order with an optimistic version check
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// Count counts purchase orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateOrderNumber generates the next purchase order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDs finds multiple payments by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Payment, error)

	// FindAll finds all payments matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, error)

	// FindUndeposited finds completed payments not yet part of a deposit
	FindUndeposited(ctx context.Context) ([]Payment, error)

	// Save persists a payment (create or update)
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock persists a payment with an optimistic version check
	SaveWithLock(ctx context.Context, payment *Payment) error

	// Count counts payments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumUndeposited sums amounts of completed, undeposited payments
	SumUndeposited(ctx context.Context) (decimal.Decimal, error)

	// SumByMethodBetween sums completed payment amounts per method in a period
	SumByMethodBetween(ctx context.Context, from, to time.Time) (map[PaymentMethod]decimal.Decimal, error)

	// GeneratePaymentNumber generates the next payment number
	GeneratePaymentNumber(ctx context.Context) (string, error)
}

// DepositRepository defines the interface for deposit persistence
type DepositRepository interface {
	// FindByID finds a deposit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Deposit, error)

	// FindAll finds all deposits matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Deposit, error)

	// Save persists a deposit (create or update)
	Save(ctx context.Context, deposit *Deposit) error

	// Count counts deposits matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateDepositNumber generates the next deposit number
	GenerateDepositNumber(ctx context.Context) (string, error)
}
