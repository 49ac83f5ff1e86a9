package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smberp/backend/internal/domain/catalog"
	"github.com/smberp/backend/internal/domain/shared"
)

// MockItemRepository is a mock implementation of catalog.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) CountReferencingComponents(ctx context.Context, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) CountChildren(ctx context.Context, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateItem(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("ExistsByCode", mock.Anything, "SVC-HOURLY").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Item")).Return(nil)

	service := NewItemService(repo)

	result, err := service.CreateItem(context.Background(), CreateItemRequest{
		Code:       "svc-hourly",
		Name:       "Hourly consulting",
		Type:       catalog.ItemTypeService,
		SalesPrice: decimal.NewFromInt(150),
	})
	require.NoError(t, err)
	assert.Equal(t, "SVC-HOURLY", result.Code)
	assert.Equal(t, string(catalog.ItemTypeService), result.Type)
	repo.AssertExpectations(t)
}

func TestCreateItemDuplicateCode(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("ExistsByCode", mock.Anything, "SVC-HOURLY").Return(true, nil)

	service := NewItemService(repo)

	_, err := service.CreateItem(context.Background(), CreateItemRequest{
		Code: "SVC-HOURLY",
		Name: "Hourly consulting",
		Type: catalog.ItemTypeService,
	})
	assertDomainErrorCode(t, err, "ALREADY_EXISTS")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSetComponentsBuildsAssembly(t *testing.T) {
	assembly, err := catalog.NewItem("KIT-01", "Starter kit", catalog.ItemTypeAssembly)
	require.NoError(t, err)
	part, err := catalog.NewItem("PART-01", "Widget", catalog.ItemTypeInventory)
	require.NoError(t, err)

	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, assembly.ID).Return(assembly, nil)
	repo.On("FindByID", mock.Anything, part.ID).Return(part, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Item")).Return(nil)

	service := NewItemService(repo)

	result, err := service.SetComponents(context.Background(), assembly.ID, []ComponentInput{
		{ComponentItemID: part.ID, Quantity: decimal.NewFromInt(3), UnitCost: decimal.NewFromFloat(2.50)},
	})
	require.NoError(t, err)
	require.Len(t, result.Components, 1)
	assert.True(t, result.ComponentCost.Equal(decimal.NewFromFloat(7.50)))
}

func TestSetComponentsRejectsNonAssembly(t *testing.T) {
	item, err := catalog.NewItem("PART-01", "Widget", catalog.ItemTypeInventory)
	require.NoError(t, err)
	part, err := catalog.NewItem("PART-02", "Gadget", catalog.ItemTypeInventory)
	require.NoError(t, err)

	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	repo.On("FindByID", mock.Anything, part.ID).Return(part, nil)

	service := NewItemService(repo)

	_, err = service.SetComponents(context.Background(), item.ID, []ComponentInput{
		{ComponentItemID: part.ID, Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(1)},
	})
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestDeleteItemInUseAsComponent(t *testing.T) {
	item, err := catalog.NewItem("PART-01", "Widget", catalog.ItemTypeInventory)
	require.NoError(t, err)

	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	repo.On("CountReferencingComponents", mock.Anything, item.ID).Return(int64(2), nil)

	service := NewItemService(repo)

	err = service.DeleteItem(context.Background(), item.ID)
	assertDomainErrorCode(t, err, "ITEM_IN_USE")
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteItemWithChildren(t *testing.T) {
	item, err := catalog.NewItem("CAT-01", "Category item", catalog.ItemTypeService)
	require.NoError(t, err)

	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	repo.On("CountReferencingComponents", mock.Anything, item.ID).Return(int64(0), nil)
	repo.On("CountChildren", mock.Anything, item.ID).Return(int64(1), nil)

	service := NewItemService(repo)

	err = service.DeleteItem(context.Background(), item.ID)
	assertDomainErrorCode(t, err, "ITEM_IN_USE")
}

func TestDeleteItemSucceeds(t *testing.T) {
	item, err := catalog.NewItem("PART-01", "Widget", catalog.ItemTypeInventory)
	require.NoError(t, err)

	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	repo.On("CountReferencingComponents", mock.Anything, item.ID).Return(int64(0), nil)
	repo.On("CountChildren", mock.Anything, item.ID).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, item.ID).Return(nil)

	service := NewItemService(repo)

	require.NoError(t, service.DeleteItem(context.Background(), item.ID))
	repo.AssertExpectations(t)
}

func TestAdjustOnHand(t *testing.T) {
	item, err := catalog.NewItem("PART-01", "Widget", catalog.ItemTypeInventory)
	require.NoError(t, err)

	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	service := NewItemService(repo)

	result, err := service.AdjustOnHand(context.Background(), item.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, result.OnHand.Equal(decimal.NewFromInt(10)))

	_, err = service.AdjustOnHand(context.Background(), item.ID, decimal.NewFromInt(-50))
	assertDomainErrorCode(t, err, "INVALID_QUANTITY")
}
