package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeposit(t *testing.T) *Deposit {
	t.Helper()
	depositDate := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	members := []DepositMember{
		{PaymentID: uuid.New(), PaymentNumber: "PAY-1", Amount: decimal.NewFromInt(100)},
		{PaymentID: uuid.New(), PaymentNumber: "PAY-2", Amount: decimal.NewFromInt(250)},
	}
	d, err := NewDeposit("DEP-20250620-00001", uuid.New(), depositDate, "", members)
	require.NoError(t, err)
	return d
}

func TestNewDepositDerivesTotal(t *testing.T) {
	d := newTestDeposit(t)

	assert.True(t, d.TotalAmount.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, DepositStatusRecorded, d.Status)
	assert.Equal(t, 2, d.MemberCount())
	assert.Len(t, d.PaymentIDs(), 2)
	assert.Len(t, d.GetDomainEvents(), 1)
}

func TestNewDepositValidation(t *testing.T) {
	depositDate := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	member := DepositMember{PaymentID: uuid.New(), PaymentNumber: "PAY-1", Amount: decimal.NewFromInt(100)}

	_, err := NewDeposit("", uuid.New(), depositDate, "", []DepositMember{member})
	assert.Error(t, err)

	_, err = NewDeposit("DEP-1", uuid.Nil, depositDate, "", []DepositMember{member})
	assert.Error(t, err)

	_, err = NewDeposit("DEP-1", uuid.New(), depositDate, "", nil)
	assertDomainErrorCode(t, err, "INVALID_INPUT")

	_, err = NewDeposit("DEP-1", uuid.New(), depositDate, "", []DepositMember{member, member})
	assertDomainErrorCode(t, err, "INVALID_INPUT")

	zero := DepositMember{PaymentID: uuid.New(), PaymentNumber: "PAY-2", Amount: decimal.Zero}
	_, err = NewDeposit("DEP-1", uuid.New(), depositDate, "", []DepositMember{zero})
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")
}

func TestDepositVerifyClientTotal(t *testing.T) {
	d := newTestDeposit(t)

	assert.NoError(t, d.VerifyClientTotal(decimal.NewFromInt(350)))

	err := d.VerifyClientTotal(decimal.NewFromInt(999))
	assertDomainErrorCode(t, err, "DEPOSIT_TOTAL_MISMATCH")
}

func TestDepositVoid(t *testing.T) {
	d := newTestDeposit(t)

	assertDomainErrorCode(t, d.Void(""), "INVALID_INPUT")

	require.NoError(t, d.Void("entered against wrong account"))
	assert.Equal(t, DepositStatusVoided, d.Status)
	assert.NotNil(t, d.VoidedAt)
	assert.Equal(t, "entered against wrong account", d.VoidReason)

	assertDomainErrorCode(t, d.Void("again"), "INVALID_STATE")
}
