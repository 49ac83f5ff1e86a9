package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
)

// ItemType represents the kind of item
type ItemType string

const (
	ItemTypeService   ItemType = "SERVICE"
	ItemTypeInventory ItemType = "INVENTORY"
	ItemTypeAssembly  ItemType = "ASSEMBLY"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeService, ItemTypeInventory, ItemTypeAssembly:
		return true
	}
	return false
}

// Item is the aggregate root for a sellable or purchasable item.
// Assemblies are items built from component items; the component rows
// belong to the assembly aggregate.
type Item struct {
	shared.BaseAggregateRoot
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string          `gorm:"type:varchar(200);not null"`
	Type       ItemType        `gorm:"type:varchar(20);not null"`
	ParentID   *uuid.UUID      `gorm:"type:uuid;index"`
	Cost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalesPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OnHand     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Components []ItemComponent `gorm:"foreignKey:AssemblyItemID"`
}

// ItemComponent links an assembly item to one of its component items
type ItemComponent struct {
	shared.BaseEntity
	AssemblyItemID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_assembly_component,priority:1"`
	ComponentItemID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_assembly_component,priority:2"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// TableName returns the table name for GORM
func (ItemComponent) TableName() string {
	return "item_components"
}

// NewItem creates a new item
func NewItem(code, name string, itemType ItemType) (*Item, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Item code must be 1-50 characters")
	}
	if strings.TrimSpace(name) == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name must be 1-200 characters")
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Unknown item type")
	}

	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              itemType,
		Cost:              decimal.Zero,
		SalesPrice:        decimal.Zero,
		OnHand:            decimal.Zero,
	}, nil
}

// SetPricing sets the item's cost and sales price
func (i *Item) SetPricing(cost, salesPrice decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Cost cannot be negative")
	}
	if salesPrice.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Sales price cannot be negative")
	}
	i.Cost = cost
	i.SalesPrice = salesPrice
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// AddComponent attaches a component item to this assembly.
// The component's total cost is quantity times unit cost.
func (i *Item) AddComponent(componentItemID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if i.Type != ItemTypeAssembly {
		return shared.NewDomainError("INVALID_STATE", "Only assembly items can have components")
	}
	if componentItemID == i.ID {
		return shared.NewDomainError("INVALID_COMPONENT", "An assembly cannot contain itself")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Component quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Component unit cost cannot be negative")
	}
	for _, c := range i.Components {
		if c.ComponentItemID == componentItemID {
			return shared.NewDomainError("ALREADY_EXISTS", "Component is already part of this assembly")
		}
	}

	i.Components = append(i.Components, ItemComponent{
		BaseEntity:      shared.NewBaseEntity(),
		AssemblyItemID:  i.ID,
		ComponentItemID: componentItemID,
		Quantity:        quantity,
		UnitCost:        unitCost,
		TotalCost:       quantity.Mul(unitCost),
	})
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// RemoveComponent detaches a component from this assembly
func (i *Item) RemoveComponent(componentItemID uuid.UUID) error {
	for idx, c := range i.Components {
		if c.ComponentItemID == componentItemID {
			i.Components = append(i.Components[:idx], i.Components[idx+1:]...)
			i.UpdatedAt = time.Now()
			i.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// ComponentCost returns the summed total cost of all components
func (i *Item) ComponentCost() decimal.Decimal {
	total := decimal.Zero
	for _, c := range i.Components {
		total = total.Add(c.TotalCost)
	}
	return total
}

// HasComponents returns true if this item is an assembly with components
func (i *Item) HasComponents() bool {
	return len(i.Components) > 0
}

// AdjustOnHand changes the on-hand quantity by delta
func (i *Item) AdjustOnHand(delta decimal.Decimal) error {
	next := i.OnHand.Add(delta)
	if next.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "On-hand quantity cannot go negative")
	}
	i.OnHand = next
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}
