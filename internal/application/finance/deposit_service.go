package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smberp/backend/internal/domain/finance"
	"github.com/smberp/backend/internal/domain/shared"
)

// DepositService batches completed customer payments into bank deposits.
// The deposit total is always recomputed from the member payments on the
// server; a client-supplied total is only a cross-check.
type DepositService struct {
	depositRepo finance.DepositRepository
	scope       TransactionScope
	events      shared.EventPublisher
}

// DepositServiceOption is a functional option for configuring DepositService
type DepositServiceOption func(*DepositService)

// WithDepositEvents sets the publisher for deposit domain events
func WithDepositEvents(events shared.EventPublisher) DepositServiceOption {
	return func(s *DepositService) {
		s.events = events
	}
}

// NewDepositService creates a new DepositService
func NewDepositService(depositRepo finance.DepositRepository, scope TransactionScope, opts ...DepositServiceOption) *DepositService {
	s := &DepositService{
		depositRepo: depositRepo,
		scope:       scope,
		events:      shared.NopEventPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordDepositRequest groups payments into one bank deposit. ClientTotal is
// the total the caller expects; it must match the sum of the member payments.
type RecordDepositRequest struct {
	BankAccountID uuid.UUID
	DepositDate   time.Time
	PaymentIDs    []uuid.UUID
	ClientTotal   decimal.Decimal
	Memo          string
	ActorID       *uuid.UUID
}

// DepositResponse represents a deposit in API responses
type DepositResponse struct {
	ID            uuid.UUID               `json:"id"`
	DepositNumber string                  `json:"deposit_number"`
	BankAccountID uuid.UUID               `json:"bank_account_id"`
	DepositDate   time.Time               `json:"deposit_date"`
	TotalAmount   decimal.Decimal         `json:"total_amount"`
	Status        string                  `json:"status"`
	Members       []DepositMemberResponse `json:"members"`
	Memo          string                  `json:"memo,omitempty"`
	VoidedAt      *time.Time              `json:"voided_at,omitempty"`
	VoidReason    string                  `json:"void_reason,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// DepositMemberResponse represents one payment inside a deposit
type DepositMemberResponse struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// RecordDeposit creates a deposit from the given payments. Every payment must
// be completed and not already deposited; the whole batch commits or nothing
// does.
func (s *DepositService) RecordDeposit(ctx context.Context, req RecordDepositRequest) (*DepositResponse, error) {
	if req.BankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank account ID is required")
	}
	if len(req.PaymentIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "A deposit requires at least one payment")
	}
	if req.ClientTotal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deposit total must be positive")
	}

	var response *DepositResponse
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payments, err := repos.Payments().FindByIDs(ctx, req.PaymentIDs)
		if err != nil {
			return err
		}
		if len(payments) != len(req.PaymentIDs) {
			return shared.NewDomainError("NOT_FOUND", "One or more payments were not found")
		}

		members := make([]finance.DepositMember, len(payments))
		for i := range payments {
			members[i] = finance.DepositMember{
				PaymentID:     payments[i].ID,
				PaymentNumber: payments[i].PaymentNumber,
				Amount:        payments[i].Amount,
			}
		}

		number, err := repos.Deposits().GenerateDepositNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate deposit number: %w", err)
		}

		deposit, err := finance.NewDeposit(number, req.BankAccountID, req.DepositDate, req.Memo, members)
		if err != nil {
			return err
		}
		if err := deposit.VerifyClientTotal(req.ClientTotal); err != nil {
			return err
		}
		if req.ActorID != nil {
			deposit.SetCreatedBy(*req.ActorID)
		}

		for i := range payments {
			if err := payments[i].MarkDeposited(deposit.ID); err != nil {
				return err
			}
			if err := repos.Payments().SaveWithLock(ctx, &payments[i]); err != nil {
				return err
			}
		}

		if err := repos.Deposits().Save(ctx, deposit); err != nil {
			return err
		}

		events = shared.CollectEvents(deposit)
		response = toDepositResponse(deposit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events...)
	return response, nil
}

// VoidDeposit voids a deposit and releases its member payments so they can be
// deposited again
func (s *DepositService) VoidDeposit(ctx context.Context, id uuid.UUID, reason string) (*DepositResponse, error) {
	var response *DepositResponse
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		deposit, err := repos.Deposits().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if deposit == nil {
			return shared.NewDomainError("NOT_FOUND", "Deposit not found")
		}

		if err := deposit.Void(reason); err != nil {
			return err
		}

		payments, err := repos.Payments().FindByIDs(ctx, deposit.PaymentIDs())
		if err != nil {
			return err
		}
		for i := range payments {
			if err := payments[i].ReleaseFromDeposit(); err != nil {
				return err
			}
			if err := repos.Payments().SaveWithLock(ctx, &payments[i]); err != nil {
				return err
			}
		}

		if err := repos.Deposits().Save(ctx, deposit); err != nil {
			return err
		}

		events = shared.CollectEvents(deposit)
		response = toDepositResponse(deposit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events...)
	return response, nil
}

// GetDepositByID gets a deposit by ID
func (s *DepositService) GetDepositByID(ctx context.Context, id uuid.UUID) (*DepositResponse, error) {
	deposit, err := s.depositRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Deposit not found")
	}
	return toDepositResponse(deposit), nil
}

// ListDeposits lists deposits with pagination
func (s *DepositService) ListDeposits(ctx context.Context, filter shared.Filter) ([]DepositResponse, int64, error) {
	deposits, err := s.depositRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.depositRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DepositResponse, len(deposits))
	for i := range deposits {
		responses[i] = *toDepositResponse(&deposits[i])
	}
	return responses, total, nil
}

func toDepositResponse(d *finance.Deposit) *DepositResponse {
	members := make([]DepositMemberResponse, len(d.Members))
	for i, m := range d.Members {
		members[i] = DepositMemberResponse{
			PaymentID:     m.PaymentID,
			PaymentNumber: m.PaymentNumber,
			Amount:        m.Amount,
		}
	}
	return &DepositResponse{
		ID:            d.ID,
		DepositNumber: d.DepositNumber,
		BankAccountID: d.BankAccountID,
		DepositDate:   d.DepositDate,
		TotalAmount:   d.TotalAmount,
		Status:        string(d.Status),
		Members:       members,
		Memo:          d.Memo,
		VoidedAt:      d.VoidedAt,
		VoidReason:    d.VoidReason,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
