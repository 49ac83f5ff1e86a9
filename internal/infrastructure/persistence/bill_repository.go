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

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Bill, error) {
	var bill finance.Bill
	if err := r.db.WithContext(ctx).First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindAll finds all bills matching the filter
func (r *GormBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Bill, error) {
	var bills []finance.Bill
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Bill{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := ValidateSortField(filter.OrderBy, BillSortFields, "bill_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// FindOpenBySupplier finds bills for a supplier that still carry a balance
func (r *GormBillRepository) FindOpenBySupplier(ctx context.Context, supplierID uuid.UUID) ([]finance.Bill, error) {
	var bills []finance.Bill
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND status IN ?", supplierID, openStatuses).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// Save creates or updates a bill
func (r *GormBillRepository) Save(ctx context.Context, bill *finance.Bill) error {
	return r.db.WithContext(ctx).Save(bill).Error
}

// SaveWithLock saves a bill with an optimistic version check
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *finance.Bill) error {
	result := r.db.WithContext(ctx).
		Model(bill).
		Where("id = ? AND version = ?", bill.ID, bill.Version-1).
		Select("*").
		Updates(bill)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Bill{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOutstanding sums balance due across open bills. Negative balances from
// supplier overpayment reduce the total.
func (r *GormBillRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&finance.Bill{}).
		Where("status IN ?", openStatuses).
		Select("COALESCE(SUM(balance_due), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// GenerateBillNumber generates the next bill number
func (r *GormBillRepository) GenerateBillNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &finance.Bill{}, "bill_number", "BILL", time.Now())
}

func (r *GormBillRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("bill_number ILIKE ? OR supplier_name ILIKE ? OR reference ILIKE ?", pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	return query
}

// Ensure GormBillRepository implements BillRepository
var _ finance.BillRepository = (*GormBillRepository)(nil)
