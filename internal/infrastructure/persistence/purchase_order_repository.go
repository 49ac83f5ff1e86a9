package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smberp/backend/internal/domain/finance"
	"github.com/smberp/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PurchaseOrder, error) {
	var order finance.PurchaseOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds all purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.PurchaseOrder, error) {
	var orders []finance.PurchaseOrder
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.PurchaseOrder{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "order_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindOpenBySupplier finds orders for a supplier that still carry a balance
func (r *GormPurchaseOrderRepository) FindOpenBySupplier(ctx context.Context, supplierID uuid.UUID) ([]finance.PurchaseOrder, error) {
	var orders []finance.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND status IN ?", supplierID, openStatuses).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *finance.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SaveWithLock saves a purchase order with an optimistic version check
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *finance.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(order).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Select("*").
		Updates(order)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.PurchaseOrder{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber generates the next purchase order number
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &finance.PurchaseOrder{}, "order_number", "PO", time.Now())
}

func (r *GormPurchaseOrderRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR supplier_name ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ finance.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
