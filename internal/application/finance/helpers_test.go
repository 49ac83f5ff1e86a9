package finance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func mustMoney(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyUSDFromString(amount)
	require.NoError(t, err)
	return m
}
