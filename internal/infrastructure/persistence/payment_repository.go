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

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var payment finance.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByIDs finds multiple payments by their IDs
func (r *GormPaymentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]finance.Payment, error) {
	if len(ids) == 0 {
		return []finance.Payment{}, nil
	}
	var payments []finance.Payment
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAll finds all payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Payment, error) {
	var payments []finance.Payment
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Payment{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "payment_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindUndeposited finds completed customer payments not yet part of a deposit
func (r *GormPaymentRepository) FindUndeposited(ctx context.Context) ([]finance.Payment, error) {
	var payments []finance.Payment
	if err := r.db.WithContext(ctx).
		Where("counterparty_type = ? AND status = ? AND is_deposited = ?",
			finance.CounterpartyTypeCustomer, finance.PaymentStatusCompleted, false).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SaveWithLock saves a payment with an optimistic version check
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *finance.Payment) error {
	result := r.db.WithContext(ctx).
		Model(payment).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Select("*").
		Updates(payment)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Payment{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumUndeposited sums amounts of completed, undeposited customer payments
func (r *GormPaymentRepository) SumUndeposited(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&finance.Payment{}).
		Where("counterparty_type = ? AND status = ? AND is_deposited = ?",
			finance.CounterpartyTypeCustomer, finance.PaymentStatusCompleted, false).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByMethodBetween sums completed customer payment amounts per method in
// [from, to)
func (r *GormPaymentRepository) SumByMethodBetween(ctx context.Context, from, to time.Time) (map[finance.PaymentMethod]decimal.Decimal, error) {
	var rows []struct {
		Method finance.PaymentMethod
		Total  decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&finance.Payment{}).
		Where("counterparty_type = ? AND status = ? AND payment_date >= ? AND payment_date < ?",
			finance.CounterpartyTypeCustomer, finance.PaymentStatusCompleted, from, to).
		Select("method, COALESCE(SUM(amount), 0) AS total").
		Group("method").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[finance.PaymentMethod]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Method] = row.Total
	}
	return totals, nil
}

// GeneratePaymentNumber generates the next payment number
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &finance.Payment{}, "payment_number", "PAY", time.Now())
}

func (r *GormPaymentRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR check_number ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if method, ok := filter.Filters["method"]; ok {
		query = query.Where("method = ?", method)
	}
	if customerID, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	return query
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
