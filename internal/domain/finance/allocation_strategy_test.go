package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

func newTarget(number string, balance string, dueDate *time.Time, createdAt time.Time) AllocationTarget {
	bal, _ := decimal.NewFromString(balance)
	return AllocationTarget{
		ID:         uuid.New(),
		Number:     number,
		BalanceDue: bal,
		DueDate:    dueDate,
		CreatedAt:  createdAt,
	}
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestFIFOAllocationOrdersByDueDate(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	dueEarly := base.AddDate(0, 0, 10)
	dueLate := base.AddDate(0, 0, 20)

	late := newTarget("INV-20250501-00002", "300.00", &dueLate, base)
	early := newTarget("INV-20250501-00001", "300.00", &dueEarly, base.Add(time.Hour))
	noDue := newTarget("INV-20250501-00003", "300.00", nil, base)

	strategy := NewFIFOAllocationStrategy()
	amount := valueobject.NewMoneyUSDFromFloat(450)

	plan, err := strategy.Allocate(amount, []AllocationTarget{noDue, late, early})
	require.NoError(t, err)

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, early.ID, plan.Lines[0].TargetID)
	assert.True(t, plan.Lines[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, late.ID, plan.Lines[1].TargetID)
	assert.True(t, plan.Lines[1].Amount.Equal(decimal.NewFromInt(150)))

	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(450)))
	assert.True(t, plan.RemainingAmount.IsZero())
	assert.True(t, plan.FullyAllocated)
	assert.Equal(t, []uuid.UUID{early.ID}, plan.TargetsFullyPaid)
	assert.Equal(t, []uuid.UUID{late.ID}, plan.TargetsPartiallyPaid)
}

func TestFIFOAllocationNilDueDateLast(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	due := base.AddDate(0, 0, 30)

	noDue := newTarget("INV-A", "100.00", nil, base)
	withDue := newTarget("INV-B", "100.00", &due, base.AddDate(0, 0, 5))

	plan, err := NewFIFOAllocationStrategy().Allocate(valueobject.NewMoneyUSDFromFloat(100), []AllocationTarget{noDue, withDue})
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)
	assert.Equal(t, withDue.ID, plan.Lines[0].TargetID)
}

func TestFIFOAllocationFallsBackToCreatedAt(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	newer := newTarget("INV-NEW", "100.00", nil, base.AddDate(0, 0, 2))
	older := newTarget("INV-OLD", "100.00", nil, base)

	plan, err := NewFIFOAllocationStrategy().Allocate(valueobject.NewMoneyUSDFromFloat(150), []AllocationTarget{newer, older})
	require.NoError(t, err)
	require.Len(t, plan.Lines, 2)
	assert.Equal(t, older.ID, plan.Lines[0].TargetID)
	assert.True(t, plan.Lines[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, newer.ID, plan.Lines[1].TargetID)
	assert.True(t, plan.Lines[1].Amount.Equal(decimal.NewFromInt(50)))
}

func TestFIFOAllocationLeavesRemainder(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	target := newTarget("INV-ONLY", "80.00", nil, base)

	plan, err := NewFIFOAllocationStrategy().Allocate(valueobject.NewMoneyUSDFromFloat(100), []AllocationTarget{target})
	require.NoError(t, err)
	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(80)))
	assert.True(t, plan.RemainingAmount.Equal(decimal.NewFromInt(20)))
	assert.False(t, plan.FullyAllocated)
}

func TestFIFOAllocationSkipsSettledTargets(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	settled := newTarget("INV-SETTLED", "0.00", nil, base)
	open := newTarget("INV-OPEN", "50.00", nil, base.Add(time.Hour))

	plan, err := NewFIFOAllocationStrategy().Allocate(valueobject.NewMoneyUSDFromFloat(50), []AllocationTarget{settled, open})
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)
	assert.Equal(t, open.ID, plan.Lines[0].TargetID)
}

func TestFIFOAllocationNoTargets(t *testing.T) {
	plan, err := NewFIFOAllocationStrategy().Allocate(valueobject.NewMoneyUSDFromFloat(100), nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Lines)
	assert.True(t, plan.RemainingAmount.Equal(decimal.NewFromInt(100)))
	assert.False(t, plan.FullyAllocated)
}

func TestFIFOAllocationRejectsNonPositiveAmount(t *testing.T) {
	_, err := NewFIFOAllocationStrategy().Allocate(valueobject.ZeroUSD(), nil)
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")
}

func TestManualAllocationSplitsAcrossTargets(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)
	b := newTarget("INV-B", "150.00", nil, base)

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: a.ID, Amount: decimal.NewFromInt(300)},
		{TargetID: b.ID, Amount: decimal.NewFromInt(150)},
	})

	plan, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(450), []AllocationTarget{a, b})
	require.NoError(t, err)
	require.Len(t, plan.Lines, 2)
	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(450)))
	assert.True(t, plan.FullyAllocated)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, plan.TargetsFullyPaid)
	assert.Empty(t, plan.TargetsPartiallyPaid)
}

func TestManualAllocationRejectsAmountAboveBalance(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)
	b := newTarget("INV-B", "150.00", nil, base)

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: a.ID, Amount: decimal.NewFromInt(300)},
		{TargetID: b.ID, Amount: decimal.NewFromInt(300)},
	})

	_, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(500), []AllocationTarget{a, b})
	assertDomainErrorCode(t, err, "ALLOCATION_EXCEEDS_BALANCE")
}

func TestManualAllocationRejectsSumAbovePayment(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)
	b := newTarget("INV-B", "300.00", nil, base)

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: a.ID, Amount: decimal.NewFromInt(300)},
		{TargetID: b.ID, Amount: decimal.NewFromInt(300)},
	})

	_, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(500), []AllocationTarget{a, b})
	assertDomainErrorCode(t, err, "ALLOCATION_EXCEEDS_PAYMENT")
}

func TestManualAllocationRejectsUnknownTarget(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: uuid.New(), Amount: decimal.NewFromInt(100)},
	})

	_, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(100), []AllocationTarget{a})
	assertDomainErrorCode(t, err, "DOCUMENT_NOT_OPEN")
}

func TestManualAllocationRejectsDuplicateTarget(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: a.ID, Amount: decimal.NewFromInt(100)},
		{TargetID: a.ID, Amount: decimal.NewFromInt(100)},
	})

	_, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(300), []AllocationTarget{a})
	require.Error(t, err)
}

func TestManualAllocationRejectsNonPositiveRequest(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: a.ID, Amount: decimal.Zero},
	})

	_, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(100), []AllocationTarget{a})
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")
}

func TestManualAllocationLeavesTargetsUntouched(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)
	b := newTarget("INV-B", "150.00", nil, base)
	targets := []AllocationTarget{a, b}

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: a.ID, Amount: decimal.NewFromInt(300)},
		{TargetID: b.ID, Amount: decimal.NewFromInt(100)},
	})

	_, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(400), targets)
	require.NoError(t, err)

	assert.True(t, targets[0].BalanceDue.Equal(decimal.NewFromInt(300)))
	assert.True(t, targets[1].BalanceDue.Equal(decimal.NewFromInt(150)))
}

func TestManualAllocationPartialLeavesRemainder(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := newTarget("INV-A", "300.00", nil, base)

	strategy := NewManualAllocationStrategy([]AllocationRequest{
		{TargetID: a.ID, Amount: decimal.NewFromInt(200)},
	})

	plan, err := strategy.Allocate(valueobject.NewMoneyUSDFromFloat(500), []AllocationTarget{a})
	require.NoError(t, err)
	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(200)))
	assert.True(t, plan.RemainingAmount.Equal(decimal.NewFromInt(300)))
	assert.False(t, plan.FullyAllocated)
	assert.Equal(t, []uuid.UUID{a.ID}, plan.TargetsPartiallyPaid)
}

func TestAllocationStrategyFactory(t *testing.T) {
	factory := NewAllocationStrategyFactory()

	fifo, err := factory.GetStrategy(AllocationStrategyTypeFIFO, nil)
	require.NoError(t, err)
	assert.Equal(t, AllocationStrategyTypeFIFO, fifo.StrategyType())

	manual, err := factory.GetStrategy(AllocationStrategyTypeManual, []AllocationRequest{
		{TargetID: uuid.New(), Amount: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, AllocationStrategyTypeManual, manual.StrategyType())

	_, err = factory.GetStrategy(AllocationStrategyTypeManual, nil)
	require.Error(t, err)

	_, err = factory.GetStrategy(AllocationStrategyType("UNKNOWN"), nil)
	require.Error(t, err)
}
