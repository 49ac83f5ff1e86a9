package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntityTimeOrderedIDs(t *testing.T) {
	a := NewBaseEntity()
	b := NewBaseEntity()

	assert.Equal(t, uuid.Version(7), a.ID.Version())
	assert.Equal(t, uuid.Version(7), b.ID.Version())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
}

func TestBaseEntityTouch(t *testing.T) {
	e := NewBaseEntity()
	created := e.CreatedAt

	e.Touch()

	assert.Equal(t, created, e.CreatedAt)
	assert.False(t, e.UpdatedAt.Before(created))
}
