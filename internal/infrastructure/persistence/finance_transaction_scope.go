package persistence

import (
	"context"

	"gorm.io/gorm"

	appfinance "github.com/smberp/backend/internal/application/finance"
	"github.com/smberp/backend/internal/domain/finance"
)

// GormTransactionScope implements the finance TransactionScope using GORM
// transactions. Every repository handed to the callback shares one
// transaction, so a payment and its document updates commit or roll back
// together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Invoices returns the invoice repository scoped to the current transaction
func (r *gormTransactionalRepositories) Invoices() finance.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Bills returns the bill repository scoped to the current transaction
func (r *gormTransactionalRepositories) Bills() finance.BillRepository {
	return NewGormBillRepository(r.tx)
}

// PurchaseOrders returns the purchase order repository scoped to the current transaction
func (r *gormTransactionalRepositories) PurchaseOrders() finance.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction
func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Deposits returns the deposit repository scoped to the current transaction
func (r *gormTransactionalRepositories) Deposits() finance.DepositRepository {
	return NewGormDepositRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appfinance.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appfinance.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
