package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

func newTestCustomerPayment(t *testing.T, amount float64) *Payment {
	t.Helper()
	paymentDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	p, err := NewCustomerPayment("PAY-20250610-00001", uuid.New(), valueobject.NewMoneyUSDFromFloat(amount), valueobject.ZeroUSD(), paymentDate, PaymentMethodCheck)
	require.NoError(t, err)
	return p
}

func TestNewCustomerPaymentValidation(t *testing.T) {
	paymentDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	amount := valueobject.NewMoneyUSDFromFloat(500)

	_, err := NewCustomerPayment("", uuid.New(), amount, valueobject.ZeroUSD(), paymentDate, PaymentMethodCheck)
	assert.Error(t, err)

	_, err = NewCustomerPayment("PAY-1", uuid.Nil, amount, valueobject.ZeroUSD(), paymentDate, PaymentMethodCheck)
	assert.Error(t, err)

	_, err = NewCustomerPayment("PAY-1", uuid.New(), valueobject.ZeroUSD(), valueobject.ZeroUSD(), paymentDate, PaymentMethodCheck)
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")

	_, err = NewCustomerPayment("PAY-1", uuid.New(), amount, valueobject.NewMoneyUSDFromFloat(500), paymentDate, PaymentMethodCheck)
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")

	_, err = NewCustomerPayment("PAY-1", uuid.New(), amount, valueobject.ZeroUSD(), paymentDate, PaymentMethod("WIRE"))
	assert.Error(t, err)

	p, err := NewCustomerPayment("PAY-1", uuid.New(), amount, valueobject.NewMoneyUSDFromFloat(12.50), paymentDate, PaymentMethodCreditCard)
	require.NoError(t, err)
	assert.Equal(t, CounterpartyTypeCustomer, p.CounterpartyType)
	assert.Equal(t, PaymentStatusPending, p.Status)
	assert.True(t, p.NetAmount.Equal(decimal.NewFromFloat(487.50)))
}

func TestNewSupplierPaymentValidation(t *testing.T) {
	paymentDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	amount := valueobject.NewMoneyUSDFromFloat(300)

	_, err := NewSupplierPayment("PAY-1", uuid.New(), amount, paymentDate, PaymentMethodBankTransfer, SourceDocumentTypeInvoice, uuid.New())
	assertDomainErrorCode(t, err, "INVALID_INPUT")

	_, err = NewSupplierPayment("PAY-1", uuid.New(), amount, paymentDate, PaymentMethodBankTransfer, SourceDocumentTypeBill, uuid.Nil)
	assert.Error(t, err)

	p, err := NewSupplierPayment("PAY-1", uuid.New(), amount, paymentDate, PaymentMethodBankTransfer, SourceDocumentTypeBill, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, CounterpartyTypeSupplier, p.CounterpartyType)
	require.NotNil(t, p.SourceDocumentType)
	assert.Equal(t, SourceDocumentTypeBill, *p.SourceDocumentType)
}

func TestPaymentAllocationSumNeverExceedsAmount(t *testing.T) {
	p := newTestCustomerPayment(t, 500)

	require.NoError(t, p.AddAllocation(uuid.New(), "INV-A", valueobject.NewMoneyUSDFromFloat(300)))
	assert.True(t, p.AllocatedTotal().Equal(decimal.NewFromInt(300)))
	assert.True(t, p.UnallocatedAmount().Equal(decimal.NewFromInt(200)))

	err := p.AddAllocation(uuid.New(), "INV-B", valueobject.NewMoneyUSDFromFloat(250))
	assertDomainErrorCode(t, err, "ALLOCATION_EXCEEDS_PAYMENT")
	assert.Len(t, p.Allocations, 1)

	require.NoError(t, p.AddAllocation(uuid.New(), "INV-B", valueobject.NewMoneyUSDFromFloat(200)))
	assert.True(t, p.UnallocatedAmount().IsZero())
}

func TestPaymentRemoveAllocation(t *testing.T) {
	p := newTestCustomerPayment(t, 500)
	invoiceID := uuid.New()

	require.NoError(t, p.AddAllocation(invoiceID, "INV-A", valueobject.NewMoneyUSDFromFloat(300)))

	released, err := p.RemoveAllocation(invoiceID)
	require.NoError(t, err)
	assert.True(t, released.Equal(decimal.NewFromInt(300)))
	assert.Empty(t, p.Allocations)

	_, err = p.RemoveAllocation(invoiceID)
	assert.Error(t, err)
}

func TestPaymentStateMachine(t *testing.T) {
	p := newTestCustomerPayment(t, 100)

	require.NoError(t, p.Complete())
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assertDomainErrorCode(t, p.Complete(), "INVALID_STATE")
	assertDomainErrorCode(t, p.Fail(), "INVALID_STATE")

	p2 := newTestCustomerPayment(t, 100)
	require.NoError(t, p2.Fail())
	assert.Equal(t, PaymentStatusFailed, p2.Status)
	assertDomainErrorCode(t, p2.Cancel(), "INVALID_STATE")

	p3 := newTestCustomerPayment(t, 100)
	require.NoError(t, p3.Cancel())
	assert.Equal(t, PaymentStatusCancelled, p3.Status)
}

func TestPaymentAllocationRejectedWhenTerminal(t *testing.T) {
	p := newTestCustomerPayment(t, 100)
	require.NoError(t, p.Fail())

	err := p.AddAllocation(uuid.New(), "INV-A", valueobject.NewMoneyUSDFromFloat(50))
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestPaymentDepositLifecycle(t *testing.T) {
	p := newTestCustomerPayment(t, 100)
	depositID := uuid.New()

	// Only completed payments are depositable
	assert.False(t, p.IsDepositable())
	assertDomainErrorCode(t, p.MarkDeposited(depositID), "PAYMENT_NOT_ELIGIBLE")

	require.NoError(t, p.Complete())
	assert.True(t, p.IsDepositable())
	require.NoError(t, p.MarkDeposited(depositID))
	assert.True(t, p.IsDeposited)
	require.NotNil(t, p.DepositID)
	assert.Equal(t, depositID, *p.DepositID)
	assert.False(t, p.IsDepositable())

	assertDomainErrorCode(t, p.MarkDeposited(uuid.New()), "PAYMENT_ALREADY_DEPOSITED")
}

func TestDepositedPaymentIsFrozen(t *testing.T) {
	p := newTestCustomerPayment(t, 500)
	require.NoError(t, p.AddAllocation(uuid.New(), "INV-A", valueobject.NewMoneyUSDFromFloat(200)))
	require.NoError(t, p.Complete())
	require.NoError(t, p.MarkDeposited(uuid.New()))

	err := p.AddAllocation(uuid.New(), "INV-B", valueobject.NewMoneyUSDFromFloat(100))
	assertDomainErrorCode(t, err, "INVALID_STATE")

	_, err = p.RemoveAllocation(p.Allocations[0].InvoiceID)
	assertDomainErrorCode(t, err, "INVALID_STATE")

	assertDomainErrorCode(t, p.Cancel(), "INVALID_STATE")
}

func TestPaymentReleaseFromDeposit(t *testing.T) {
	p := newTestCustomerPayment(t, 100)
	require.NoError(t, p.Complete())
	require.NoError(t, p.MarkDeposited(uuid.New()))

	require.NoError(t, p.ReleaseFromDeposit())
	assert.False(t, p.IsDeposited)
	assert.Nil(t, p.DepositID)
	assert.True(t, p.IsDepositable())

	assertDomainErrorCode(t, p.ReleaseFromDeposit(), "INVALID_STATE")
}
