package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smberp/backend/internal/domain/catalog"
	"github.com/smberp/backend/internal/domain/shared"
)

// ItemService handles catalog item operations
type ItemService struct {
	itemRepo catalog.ItemRepository
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

// CreateItemRequest creates a new catalog item
type CreateItemRequest struct {
	Code       string
	Name       string
	Type       catalog.ItemType
	ParentID   *uuid.UUID
	Cost       decimal.Decimal
	SalesPrice decimal.Decimal
	ActorID    *uuid.UUID
}

// ComponentInput is one component line on an assembly
type ComponentInput struct {
	ComponentItemID uuid.UUID       `json:"component_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// ItemComponentResponse represents a component in API responses
type ItemComponentResponse struct {
	ComponentItemID uuid.UUID       `json:"component_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID            uuid.UUID               `json:"id"`
	Code          string                  `json:"code"`
	Name          string                  `json:"name"`
	Type          string                  `json:"type"`
	ParentID      *uuid.UUID              `json:"parent_id,omitempty"`
	Cost          decimal.Decimal         `json:"cost"`
	SalesPrice    decimal.Decimal         `json:"sales_price"`
	OnHand        decimal.Decimal         `json:"on_hand"`
	ComponentCost decimal.Decimal         `json:"component_cost"`
	Components    []ItemComponentResponse `json:"components,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// CreateItem creates a new catalog item
func (s *ItemService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	exists, err := s.itemRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check item code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An item with this code already exists")
	}

	item, err := catalog.NewItem(req.Code, req.Name, req.Type)
	if err != nil {
		return nil, err
	}
	if err := item.SetPricing(req.Cost, req.SalesPrice); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		parent, err := s.itemRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Parent item not found")
		}
		item.ParentID = req.ParentID
	}
	if req.ActorID != nil {
		item.SetCreatedBy(*req.ActorID)
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// UpdateItemPricing updates an item's cost and sales price
func (s *ItemService) UpdateItemPricing(ctx context.Context, id uuid.UUID, cost, salesPrice decimal.Decimal) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Item not found")
	}
	if err := item.SetPricing(cost, salesPrice); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// SetComponents replaces the component list of an assembly item
func (s *ItemService) SetComponents(ctx context.Context, id uuid.UUID, components []ComponentInput) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Item not found")
	}

	item.Components = item.Components[:0]
	for _, c := range components {
		component, err := s.itemRepo.FindByID(ctx, c.ComponentItemID)
		if err != nil {
			return nil, err
		}
		if component == nil {
			return nil, shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Component item %s not found", c.ComponentItemID))
		}
		if err := item.AddComponent(c.ComponentItemID, c.Quantity, c.UnitCost); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// DeleteItem removes an item. An item referenced by any assembly or with
// child items cannot be deleted.
func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return shared.NewDomainError("NOT_FOUND", "Item not found")
	}

	refs, err := s.itemRepo.CountReferencingComponents(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return shared.NewDomainError("ITEM_IN_USE",
			fmt.Sprintf("Item is used as a component by %d assemblies", refs))
	}

	children, err := s.itemRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return shared.NewDomainError("ITEM_IN_USE",
			fmt.Sprintf("Item has %d child items", children))
	}

	return s.itemRepo.Delete(ctx, id)
}

// GetItemByID gets an item by ID
func (s *ItemService) GetItemByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Item not found")
	}
	return toItemResponse(item), nil
}

// ListItems lists items with pagination
func (s *ItemService) ListItems(ctx context.Context, filter shared.Filter) ([]ItemResponse, int64, error) {
	items, err := s.itemRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = *toItemResponse(&items[i])
	}
	return responses, total, nil
}

// AdjustOnHand changes an item's on-hand quantity by delta
func (s *ItemService) AdjustOnHand(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Item not found")
	}
	if err := item.AdjustOnHand(delta); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

func toItemResponse(item *catalog.Item) *ItemResponse {
	components := make([]ItemComponentResponse, len(item.Components))
	for i, c := range item.Components {
		components[i] = ItemComponentResponse{
			ComponentItemID: c.ComponentItemID,
			Quantity:        c.Quantity,
			UnitCost:        c.UnitCost,
			TotalCost:       c.TotalCost,
		}
	}
	return &ItemResponse{
		ID:            item.ID,
		Code:          item.Code,
		Name:          item.Name,
		Type:          string(item.Type),
		ParentID:      item.ParentID,
		Cost:          item.Cost,
		SalesPrice:    item.SalesPrice,
		OnHand:        item.OnHand,
		ComponentCost: item.ComponentCost(),
		Components:    components,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}
