package partner

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smberp/backend/internal/domain/partner"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

func TestCreateSupplier(t *testing.T) {
	repo := new(MockSupplierRepository)
	repo.On("ExistsByCode", mock.Anything, "PARTS-01").Return(false, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(s *partner.Supplier) bool {
		return s.Code == "PARTS-01" && s.PaymentTermsDays == 45
	})).Return(nil)

	service := NewSupplierService(repo)

	terms := 45
	limit := decimal.NewFromInt(25000)
	result, err := service.CreateSupplier(context.Background(), CreateSupplierRequest{
		Code:             "parts-01",
		Name:             "Parts Supply Co",
		PaymentTermsDays: &terms,
		CreditLimit:      &limit,
	})
	require.NoError(t, err)

	assert.Equal(t, "PARTS-01", result.Code)
	assert.Equal(t, string(valueobject.USD), result.Currency)
	assert.Equal(t, 45, result.PaymentTermsDays)
	assert.True(t, result.CreditLimit.Equal(limit))
	repo.AssertExpectations(t)
}

func TestCreateSupplierDuplicateCode(t *testing.T) {
	repo := new(MockSupplierRepository)
	repo.On("ExistsByCode", mock.Anything, "PARTS-01").Return(true, nil)

	service := NewSupplierService(repo)

	_, err := service.CreateSupplier(context.Background(), CreateSupplierRequest{
		Code: "PARTS-01",
		Name: "Parts Supply Co",
	})
	assertDomainErrorCode(t, err, "ALREADY_EXISTS")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSetSupplierTerms(t *testing.T) {
	supplier, err := partner.NewSupplier("PARTS-01", "Parts Supply Co", valueobject.USD)
	require.NoError(t, err)

	repo := new(MockSupplierRepository)
	repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	service := NewSupplierService(repo)

	result, err := service.SetSupplierTerms(context.Background(), supplier.ID, 60, decimal.NewFromInt(50000))
	require.NoError(t, err)
	assert.Equal(t, 60, result.PaymentTermsDays)
	assert.True(t, result.CreditLimit.Equal(decimal.NewFromInt(50000)))
}

func TestSetSupplierTermsRejectsNegativeDays(t *testing.T) {
	supplier, err := partner.NewSupplier("PARTS-01", "Parts Supply Co", valueobject.USD)
	require.NoError(t, err)

	repo := new(MockSupplierRepository)
	repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

	service := NewSupplierService(repo)

	_, err = service.SetSupplierTerms(context.Background(), supplier.ID, -1, decimal.Zero)
	assertDomainErrorCode(t, err, "INVALID_PAYMENT_TERMS")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDeactivateSupplier(t *testing.T) {
	supplier, err := partner.NewSupplier("PARTS-01", "Parts Supply Co", valueobject.USD)
	require.NoError(t, err)

	repo := new(MockSupplierRepository)
	repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	service := NewSupplierService(repo)

	result, err := service.DeactivateSupplier(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, string(partner.SupplierStatusInactive), result.Status)
}
