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

func newOpenBill(t *testing.T, total float64) *Bill {
	t.Helper()
	billDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dueDate := billDate.AddDate(0, 0, 30)

	bill, err := NewBill("BILL-20250601-00001", uuid.New(), "Parts Supply Co", billDate, &dueDate, valueobject.NewMoneyUSDFromFloat(total))
	require.NoError(t, err)
	require.NoError(t, bill.Approve())
	return bill
}

func TestNewBillValidation(t *testing.T) {
	billDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	total := valueobject.NewMoneyUSDFromFloat(500)

	_, err := NewBill("", uuid.New(), "Parts Supply Co", billDate, nil, total)
	assert.Error(t, err)

	_, err = NewBill("BILL-1", uuid.Nil, "Parts Supply Co", billDate, nil, total)
	assert.Error(t, err)

	_, err = NewBill("BILL-1", uuid.New(), "Parts Supply Co", billDate, nil, valueobject.ZeroUSD())
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")

	bill, err := NewBill("BILL-1", uuid.New(), "Parts Supply Co", billDate, nil, total)
	require.NoError(t, err)
	assert.Equal(t, DocumentStatusDraft, bill.Status)
	assert.True(t, bill.BalanceDue.Equal(decimal.NewFromInt(500)))
}

func TestBillApprove(t *testing.T) {
	billDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bill, err := NewBill("BILL-1", uuid.New(), "Parts Supply Co", billDate, nil, valueobject.NewMoneyUSDFromFloat(500))
	require.NoError(t, err)

	require.NoError(t, bill.Approve())
	assert.Equal(t, DocumentStatusPending, bill.Status)

	assertDomainErrorCode(t, bill.Approve(), "INVALID_STATE")
}

func TestBillPartialThenFullPayment(t *testing.T) {
	bill := newOpenBill(t, 500)

	require.NoError(t, bill.ApplyPayment(valueobject.NewMoneyUSDFromFloat(200), uuid.New()))
	assert.Equal(t, DocumentStatusPartial, bill.Status)
	assert.True(t, bill.BalanceDue.Equal(decimal.NewFromInt(300)))

	require.NoError(t, bill.ApplyPayment(valueobject.NewMoneyUSDFromFloat(300), uuid.New()))
	assert.Equal(t, DocumentStatusPaid, bill.Status)
	assert.True(t, bill.BalanceDue.IsZero())
	assert.NotNil(t, bill.PaidAt)
	assert.True(t, bill.SupplierCredit().IsZero())
}

func TestBillOverpaymentBecomesSupplierCredit(t *testing.T) {
	bill := newOpenBill(t, 500)

	require.NoError(t, bill.ApplyPayment(valueobject.NewMoneyUSDFromFloat(600), uuid.New()))
	assert.Equal(t, DocumentStatusPaid, bill.Status)
	assert.True(t, bill.BalanceDue.Equal(decimal.NewFromInt(-100)))
	assert.True(t, bill.SupplierCredit().Equal(decimal.NewFromInt(100)))
}

func TestBillRejectsPaymentOnDraft(t *testing.T) {
	billDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bill, err := NewBill("BILL-1", uuid.New(), "Parts Supply Co", billDate, nil, valueobject.NewMoneyUSDFromFloat(500))
	require.NoError(t, err)

	err = bill.ApplyPayment(valueobject.NewMoneyUSDFromFloat(100), uuid.New())
	assertDomainErrorCode(t, err, "DOCUMENT_NOT_OPEN")
}

func TestBillReversePayment(t *testing.T) {
	bill := newOpenBill(t, 500)
	require.NoError(t, bill.ApplyPayment(valueobject.NewMoneyUSDFromFloat(500), uuid.New()))
	require.Equal(t, DocumentStatusPaid, bill.Status)

	require.NoError(t, bill.ReversePayment(valueobject.NewMoneyUSDFromFloat(500)))
	assert.Equal(t, DocumentStatusPending, bill.Status)
	assert.True(t, bill.BalanceDue.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, bill.PaidAt)

	err := bill.ReversePayment(valueobject.NewMoneyUSDFromFloat(1))
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")
}

func TestBillEffectiveStatusOverdue(t *testing.T) {
	bill := newOpenBill(t, 500)
	afterDue := bill.DueDate.AddDate(0, 0, 1)

	assert.Equal(t, DocumentStatusOverdue, bill.EffectiveStatus(afterDue))
	assert.True(t, bill.IsOverdue(afterDue))

	require.NoError(t, bill.ApplyPayment(valueobject.NewMoneyUSDFromFloat(600), uuid.New()))
	assert.Equal(t, DocumentStatusPaid, bill.EffectiveStatus(afterDue))
}
