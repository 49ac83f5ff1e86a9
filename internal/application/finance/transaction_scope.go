package finance

import (
	"context"

	"github.com/smberp/backend/internal/domain/finance"
)

// TransactionalRepositories exposes the finance repositories bound to one
// database transaction. All writes made through them commit or roll back
// together.
type TransactionalRepositories interface {
	Invoices() finance.InvoiceRepository
	Bills() finance.BillRepository
	PurchaseOrders() finance.PurchaseOrderRepository
	Payments() finance.PaymentRepository
	Deposits() finance.DepositRepository
}

// TransactionScope runs a function inside a single database transaction.
// If fn returns an error the transaction rolls back and the error is
// returned unchanged.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// noOpTransactionScope passes through to a fixed repository set without
// transactional guarantees. Used in tests.
type noOpTransactionScope struct {
	repos TransactionalRepositories
}

// NewNoOpTransactionScope wraps the given repositories in a pass-through scope
func NewNoOpTransactionScope(repos TransactionalRepositories) TransactionScope {
	return &noOpTransactionScope{repos: repos}
}

func (s *noOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

// StaticRepositories is a TransactionalRepositories backed by fixed instances
type StaticRepositories struct {
	InvoiceRepo       finance.InvoiceRepository
	BillRepo          finance.BillRepository
	PurchaseOrderRepo finance.PurchaseOrderRepository
	PaymentRepo       finance.PaymentRepository
	DepositRepo       finance.DepositRepository
}

func (r *StaticRepositories) Invoices() finance.InvoiceRepository              { return r.InvoiceRepo }
func (r *StaticRepositories) Bills() finance.BillRepository                    { return r.BillRepo }
func (r *StaticRepositories) PurchaseOrders() finance.PurchaseOrderRepository  { return r.PurchaseOrderRepo }
func (r *StaticRepositories) Payments() finance.PaymentRepository              { return r.PaymentRepo }
func (r *StaticRepositories) Deposits() finance.DepositRepository              { return r.DepositRepo }
