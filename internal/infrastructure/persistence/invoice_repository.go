package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smberp/backend/internal/domain/finance"
	"github.com/smberp/backend/internal/domain/shared"
)

// openStatuses are the persisted statuses that still carry a balance.
// OVERDUE never appears here because it is derived on read.
var openStatuses = []finance.DocumentStatus{
	finance.DocumentStatusUnpaid,
	finance.DocumentStatusPending,
	finance.DocumentStatusPartial,
}

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	var invoice finance.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*finance.Invoice, error) {
	var invoice finance.Invoice
	if err := r.db.WithContext(ctx).
		First(&invoice, "invoice_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDs finds multiple invoices by their IDs
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]finance.Invoice, error) {
	if len(ids) == 0 {
		return []finance.Invoice{}, nil
	}
	var invoices []finance.Invoice
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAll finds all invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Invoice{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "invoice_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOpenByCustomer finds invoices for a customer that still carry a balance,
// ordered oldest due date first with nulls last, then by creation date.
func (r *GormInvoiceRepository) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status IN ?", customerID, openStatuses).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// SaveWithLock saves an invoice with an optimistic version check.
// Returns CONCURRENT_MODIFICATION if the stored version has moved on.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(invoice).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Select("*").
		Updates(invoice)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Invoice{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts invoices per persisted status
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context) (map[finance.DocumentStatus]int64, error) {
	var rows []struct {
		Status finance.DocumentStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&finance.Invoice{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[finance.DocumentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumOutstanding sums balance due across open invoices
func (r *GormInvoiceRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	return r.sumBalance(ctx, r.db.WithContext(ctx).
		Model(&finance.Invoice{}).
		Where("status IN ?", openStatuses))
}

// SumOverdue sums balance due across open invoices past due as of the given time
func (r *GormInvoiceRepository) SumOverdue(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	return r.sumBalance(ctx, r.db.WithContext(ctx).
		Model(&finance.Invoice{}).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", openStatuses, asOf))
}

// GenerateInvoiceNumber generates the next invoice number
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &finance.Invoice{}, "invoice_number", "INV", time.Now())
}

func (r *GormInvoiceRepository) sumBalance(ctx context.Context, query *gorm.DB) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.
		Select("COALESCE(SUM(balance_due), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *GormInvoiceRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", customerID)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
