package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/smberp/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds an item by its ID, components included
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByCode finds an item by its code
	FindByCode(ctx context.Context, code string) (*Item, error)

	// FindAll finds all items matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, error)

	// Save persists an item and its components (create or update)
	Save(ctx context.Context, item *Item) error

	// Delete removes an item by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts items matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks if an item with the code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// CountReferencingComponents counts component rows on other assemblies
	// that reference the given item
	CountReferencingComponents(ctx context.Context, itemID uuid.UUID) (int64, error)

	// CountChildren counts items whose parent is the given item
	CountChildren(ctx context.Context, itemID uuid.UUID) (int64, error)
}
