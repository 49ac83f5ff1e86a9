package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smberp/backend/internal/domain/catalog"
	"github.com/smberp/backend/internal/domain/shared"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID, components included
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Preload("Components").
		First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCode finds an item by its code
func (r *GormItemRepository) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Preload("Components").
		First(&item, "code = ?", strings.ToUpper(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll finds all items matching the filter
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Item{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := ValidateSortField(filter.OrderBy, ItemSortFields, "code")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Preload("Components").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save persists an item and its components. Component rows are fully
// replaced so removals on the aggregate reach the database.
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assembly_item_id = ?", item.ID).
			Delete(&catalog.ItemComponent{}).Error; err != nil {
			return err
		}
		return translateError(tx.Save(item).Error)
	})
}

// Delete removes an item and its component rows
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assembly_item_id = ?", id).
			Delete(&catalog.ItemComponent{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Item{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts items matching the filter
func (r *GormItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Item{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if an item with the given code exists
func (r *GormItemRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountReferencingComponents counts component rows on other assemblies that
// reference the given item
func (r *GormItemRepository) CountReferencingComponents(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.ItemComponent{}).
		Where("component_item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountChildren counts items whose parent is the given item
func (r *GormItemRepository) CountChildren(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("parent_id = ?", itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormItemRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	if itemType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", itemType)
	}
	return query
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)
