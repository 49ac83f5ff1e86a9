package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// AllocationStrategyType defines how a payment is spread across documents
type AllocationStrategyType string

const (
	AllocationStrategyTypeFIFO   AllocationStrategyType = "FIFO"   // Oldest outstanding documents first
	AllocationStrategyTypeManual AllocationStrategyType = "MANUAL" // Caller-specified per-document amounts
)

// IsValid checks if the strategy type is valid
func (t AllocationStrategyType) IsValid() bool {
	return t == AllocationStrategyTypeFIFO || t == AllocationStrategyTypeManual
}

// String returns the string representation
func (t AllocationStrategyType) String() string {
	return string(t)
}

// AllocationTarget is an open document that can receive part of a payment
type AllocationTarget struct {
	ID         uuid.UUID       // Document ID
	Number     string          // Document number for display
	BalanceDue decimal.Decimal // Amount still outstanding
	DueDate    *time.Time      // Due date for FIFO ordering
	CreatedAt  time.Time       // Creation date as fallback ordering
}

// AllocationLine is a single planned allocation
type AllocationLine struct {
	TargetID     uuid.UUID
	TargetNumber string
	Amount       decimal.Decimal
}

// AllocationPlan is the complete output of an allocation strategy. Nothing is
// persisted here; the application layer commits the plan in one transaction.
type AllocationPlan struct {
	Lines                []AllocationLine
	TotalAllocated       decimal.Decimal
	RemainingAmount      decimal.Decimal
	FullyAllocated       bool
	TargetsFullyPaid     []uuid.UUID
	TargetsPartiallyPaid []uuid.UUID
}

// AllocationStrategy plans how one payment amount is spread across targets
type AllocationStrategy interface {
	// StrategyType returns the allocation strategy type
	StrategyType() AllocationStrategyType
	// Allocate calculates how to allocate the given amount across targets
	Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error)
}

func emptyPlan(amount valueobject.Money) *AllocationPlan {
	return &AllocationPlan{
		Lines:                make([]AllocationLine, 0),
		TotalAllocated:       decimal.Zero,
		RemainingAmount:      amount.Amount(),
		FullyAllocated:       false,
		TargetsFullyPaid:     make([]uuid.UUID, 0),
		TargetsPartiallyPaid: make([]uuid.UUID, 0),
	}
}

// FIFOAllocationStrategy fills the oldest outstanding documents first,
// ordered by due date (documents without a due date last) then creation date.
type FIFOAllocationStrategy struct{}

// NewFIFOAllocationStrategy creates a new FIFO allocation strategy
func NewFIFOAllocationStrategy() *FIFOAllocationStrategy {
	return &FIFOAllocationStrategy{}
}

// StrategyType returns the allocation strategy type
func (s *FIFOAllocationStrategy) StrategyType() AllocationStrategyType {
	return AllocationStrategyTypeFIFO
}

// Allocate allocates the amount to targets in FIFO order
func (s *FIFOAllocationStrategy) Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if len(targets) == 0 {
		return emptyPlan(amount), nil
	}

	sorted := make([]AllocationTarget, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DueDate != nil && sorted[j].DueDate != nil {
			if !sorted[i].DueDate.Equal(*sorted[j].DueDate) {
				return sorted[i].DueDate.Before(*sorted[j].DueDate)
			}
		} else if sorted[i].DueDate != nil {
			return true
		} else if sorted[j].DueDate != nil {
			return false
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	plan := emptyPlan(amount)
	remaining := amount.Amount()

	for _, target := range sorted {
		if remaining.IsZero() {
			break
		}
		if target.BalanceDue.LessThanOrEqual(decimal.Zero) {
			continue
		}

		allocAmount := decimal.Min(remaining, target.BalanceDue)

		plan.Lines = append(plan.Lines, AllocationLine{
			TargetID:     target.ID,
			TargetNumber: target.Number,
			Amount:       allocAmount,
		})
		plan.TotalAllocated = plan.TotalAllocated.Add(allocAmount)
		remaining = remaining.Sub(allocAmount)

		if allocAmount.GreaterThanOrEqual(target.BalanceDue) {
			plan.TargetsFullyPaid = append(plan.TargetsFullyPaid, target.ID)
		} else {
			plan.TargetsPartiallyPaid = append(plan.TargetsPartiallyPaid, target.ID)
		}
	}

	plan.RemainingAmount = remaining
	plan.FullyAllocated = remaining.IsZero()
	return plan, nil
}

// AllocationRequest is a caller-specified amount for one document
type AllocationRequest struct {
	TargetID uuid.UUID
	Amount   decimal.Decimal
}

// ManualAllocationStrategy applies caller-specified amounts. Unlike FIFO it
// validates strictly instead of capping: a requested amount above the
// document's balance or a request sum above the payment amount rejects the
// whole plan, so a bad submission never half-commits.
type ManualAllocationStrategy struct {
	requests []AllocationRequest
}

// NewManualAllocationStrategy creates a manual strategy with the given requests
func NewManualAllocationStrategy(requests []AllocationRequest) *ManualAllocationStrategy {
	return &ManualAllocationStrategy{requests: requests}
}

// StrategyType returns the allocation strategy type
func (s *ManualAllocationStrategy) StrategyType() AllocationStrategyType {
	return AllocationStrategyTypeManual
}

// Requests returns the configured allocation requests
func (s *ManualAllocationStrategy) Requests() []AllocationRequest {
	return s.requests
}

// Allocate validates and plans the caller-specified allocations
func (s *ManualAllocationStrategy) Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if len(s.requests) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Manual allocation requires at least one request")
	}

	numbers := make(map[uuid.UUID]string, len(targets))
	balances := make(map[uuid.UUID]decimal.Decimal, len(targets))
	for _, target := range targets {
		numbers[target.ID] = target.Number
		balances[target.ID] = target.BalanceDue
	}

	plan := emptyPlan(amount)
	requested := decimal.Zero

	for _, req := range s.requests {
		balance, exists := balances[req.TargetID]
		if !exists || balance.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("DOCUMENT_NOT_OPEN",
				fmt.Sprintf("Document %s is not open for payment", req.TargetID))
		}
		number := numbers[req.TargetID]
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT",
				fmt.Sprintf("Allocation amount for %s must be positive", number))
		}
		if req.Amount.GreaterThan(balance) {
			return nil, shared.NewDomainError("ALLOCATION_EXCEEDS_BALANCE",
				fmt.Sprintf("Allocation %s exceeds balance due %s on %s",
					req.Amount.StringFixed(2), balance.StringFixed(2), number))
		}

		requested = requested.Add(req.Amount)

		plan.Lines = append(plan.Lines, AllocationLine{
			TargetID:     req.TargetID,
			TargetNumber: number,
			Amount:       req.Amount,
		})
		if req.Amount.GreaterThanOrEqual(balance) {
			plan.TargetsFullyPaid = append(plan.TargetsFullyPaid, req.TargetID)
		} else {
			plan.TargetsPartiallyPaid = append(plan.TargetsPartiallyPaid, req.TargetID)
		}

		// Each target may appear only once per submission
		balances[req.TargetID] = decimal.Zero
	}

	if requested.GreaterThan(amount.Amount()) {
		return nil, shared.NewDomainError("ALLOCATION_EXCEEDS_PAYMENT",
			fmt.Sprintf("Allocations total %s exceeds payment amount %s",
				requested.StringFixed(2), amount.Amount().StringFixed(2)))
	}

	plan.TotalAllocated = requested
	plan.RemainingAmount = amount.Amount().Sub(requested)
	plan.FullyAllocated = plan.RemainingAmount.IsZero()
	return plan, nil
}

// AllocationStrategyFactory creates allocation strategies
type AllocationStrategyFactory struct{}

// NewAllocationStrategyFactory creates a new factory
func NewAllocationStrategyFactory() *AllocationStrategyFactory {
	return &AllocationStrategyFactory{}
}

// GetStrategy returns a strategy by type
func (f *AllocationStrategyFactory) GetStrategy(strategyType AllocationStrategyType, requests []AllocationRequest) (AllocationStrategy, error) {
	switch strategyType {
	case AllocationStrategyTypeFIFO:
		return NewFIFOAllocationStrategy(), nil
	case AllocationStrategyTypeManual:
		if len(requests) == 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Manual strategy requires allocation requests")
		}
		return NewManualAllocationStrategy(requests), nil
	default:
		return nil, shared.NewDomainError("INVALID_STRATEGY", "Unknown allocation strategy type")
	}
}
