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

// GormDepositRepository implements DepositRepository using GORM
type GormDepositRepository struct {
	db *gorm.DB
}

// NewGormDepositRepository creates a new GormDepositRepository
func NewGormDepositRepository(db *gorm.DB) *GormDepositRepository {
	return &GormDepositRepository{db: db}
}

// FindByID finds a deposit by its ID
func (r *GormDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Deposit, error) {
	var deposit finance.Deposit
	if err := r.db.WithContext(ctx).First(&deposit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &deposit, nil
}

// FindAll finds all deposits matching the filter
func (r *GormDepositRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Deposit, error) {
	var deposits []finance.Deposit
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Deposit{}), filter)
	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := ValidateSortField(filter.OrderBy, DepositSortFields, "deposit_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}

// Save creates or updates a deposit
func (r *GormDepositRepository) Save(ctx context.Context, deposit *finance.Deposit) error {
	return r.db.WithContext(ctx).Save(deposit).Error
}

// Count counts deposits matching the filter
func (r *GormDepositRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&finance.Deposit{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateDepositNumber generates the next deposit number
func (r *GormDepositRepository) GenerateDepositNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &finance.Deposit{}, "deposit_number", "DEP", time.Now())
}

func (r *GormDepositRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("deposit_number ILIKE ?", "%"+filter.Search+"%")
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if bankAccountID, ok := filter.Filters["bank_account_id"]; ok {
		query = query.Where("bank_account_id = ?", bankAccountID)
	}
	return query
}

// Ensure GormDepositRepository implements DepositRepository
var _ finance.DepositRepository = (*GormDepositRepository)(nil)
