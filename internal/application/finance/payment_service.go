package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smberp/backend/internal/domain/finance"
	"github.com/smberp/backend/internal/domain/partner"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// PaymentService handles recording customer payments and applying them to
// open invoices. Every apply runs in one transaction: either the payment and
// all touched invoices commit together or nothing does.
type PaymentService struct {
	customerRepo     partner.CustomerRepository
	paymentRepo      finance.PaymentRepository
	invoiceRepo      finance.InvoiceRepository
	scope            TransactionScope
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	strategyFactory  *finance.AllocationStrategyFactory
	events           shared.EventPublisher
	logger           *zap.Logger
}

// PaymentServiceOption is a functional option for configuring PaymentService
type PaymentServiceOption func(*PaymentService)

// WithIdempotencyStore enables duplicate request detection
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) PaymentServiceOption {
	return func(s *PaymentService) {
		s.idempotencyStore = store
		s.idempotencyCfg = cfg
	}
}

// WithPaymentLogger sets the logger used for retry and conflict reporting
func WithPaymentLogger(logger *zap.Logger) PaymentServiceOption {
	return func(s *PaymentService) {
		s.logger = logger
	}
}

// WithPaymentEvents sets the publisher for domain events raised during apply
func WithPaymentEvents(events shared.EventPublisher) PaymentServiceOption {
	return func(s *PaymentService) {
		s.events = events
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	customerRepo partner.CustomerRepository,
	paymentRepo finance.PaymentRepository,
	invoiceRepo finance.InvoiceRepository,
	scope TransactionScope,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		customerRepo:    customerRepo,
		paymentRepo:     paymentRepo,
		invoiceRepo:     invoiceRepo,
		scope:           scope,
		idempotencyCfg:  shared.DefaultIdempotencyConfig(),
		strategyFactory: finance.NewAllocationStrategyFactory(),
		events:          shared.NopEventPublisher{},
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ManualAllocationInput is a caller-specified amount for one invoice
type ManualAllocationInput struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ApplyPaymentRequest records a customer payment and applies it to invoices.
// Pending leaves the payment in PENDING instead of completing it, for funds
// that have been promised but not yet received.
type ApplyPaymentRequest struct {
	CustomerID         uuid.UUID
	Amount             decimal.Decimal
	FeeAmount          decimal.Decimal
	PaymentDate        time.Time
	Method             finance.PaymentMethod
	Strategy           finance.AllocationStrategyType
	Allocations        []ManualAllocationInput
	ARAccountID        *uuid.UUID
	DepositToAccountID *uuid.UUID
	CheckNumber        string
	Memo               string
	Pending            bool
	RequestKey         string
	ActorID            *uuid.UUID
}

// AppliedAllocationResponse reports the effect of one allocation line
type AppliedAllocationResponse struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Status        string          `json:"status"`
}

// ApplyPaymentResult is the outcome of recording and applying a payment
type ApplyPaymentResult struct {
	PaymentID         uuid.UUID                   `json:"payment_id"`
	PaymentNumber     string                      `json:"payment_number"`
	CustomerID        uuid.UUID                   `json:"customer_id"`
	Status            string                      `json:"status"`
	Amount            decimal.Decimal             `json:"amount"`
	AllocatedTotal    decimal.Decimal             `json:"allocated_total"`
	UnallocatedAmount decimal.Decimal             `json:"unallocated_amount"`
	Allocations       []AppliedAllocationResponse `json:"allocations"`
}

// ApplyPayment records a payment and spreads it across the customer's open
// invoices according to the requested strategy. On an optimistic lock
// conflict the whole operation is retried once against fresh state.
func (s *PaymentService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*ApplyPaymentResult, error) {
	if err := s.validateApplyRequest(req); err != nil {
		return nil, err
	}

	reserved := false
	if s.idempotencyStore != nil && s.idempotencyCfg.Enabled && req.RequestKey != "" {
		first, err := s.idempotencyStore.MarkProcessed(ctx, req.RequestKey, s.idempotencyCfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check request key: %w", err)
		}
		if !first {
			return nil, shared.ErrDuplicateRequest
		}
		reserved = true
	}

	result, err := s.applyChecked(ctx, req)
	if err != nil && reserved {
		// The reservation must not outlive a rolled-back apply: nothing was
		// persisted, so the same submission has to remain retryable.
		if relErr := s.idempotencyStore.Release(ctx, req.RequestKey); relErr != nil {
			s.logger.Error("failed to release request key after failed apply",
				zap.String("request_key", req.RequestKey),
				zap.Error(relErr))
		}
	}
	return result, err
}

func (s *PaymentService) applyChecked(ctx context.Context, req ApplyPaymentRequest) (*ApplyPaymentResult, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}

	strategy, err := s.buildStrategy(req)
	if err != nil {
		return nil, err
	}

	if !customer.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot record a payment for an inactive customer")
	}

	result, events, err := s.applyOnce(ctx, req, strategy)
	if isConcurrencyConflict(err) {
		s.logger.Warn("payment apply hit a concurrent modification, retrying",
			zap.String("customer_id", req.CustomerID.String()),
			zap.String("request_key", req.RequestKey))
		result, events, err = s.applyOnce(ctx, req, strategy)
	}
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events...)
	return result, nil
}

func (s *PaymentService) validateApplyRequest(req ApplyPaymentRequest) error {
	if req.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Customer ID is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if req.FeeAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Fee amount cannot be negative")
	}
	if !req.Method.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}
	if !req.Strategy.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown allocation strategy")
	}
	if req.Strategy == finance.AllocationStrategyTypeManual && len(req.Allocations) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Manual allocation requires at least one line")
	}
	return nil
}

func (s *PaymentService) buildStrategy(req ApplyPaymentRequest) (finance.AllocationStrategy, error) {
	requests := make([]finance.AllocationRequest, len(req.Allocations))
	for i, a := range req.Allocations {
		requests[i] = finance.AllocationRequest{TargetID: a.InvoiceID, Amount: a.Amount}
	}
	return s.strategyFactory.GetStrategy(req.Strategy, requests)
}

func (s *PaymentService) applyOnce(ctx context.Context, req ApplyPaymentRequest, strategy finance.AllocationStrategy) (*ApplyPaymentResult, []shared.DomainEvent, error) {
	var result *ApplyPaymentResult
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := s.loadTargets(ctx, repos, req)
		if err != nil {
			return err
		}

		targets := make([]finance.AllocationTarget, len(invoices))
		for i := range invoices {
			targets[i] = finance.AllocationTarget{
				ID:         invoices[i].ID,
				Number:     invoices[i].InvoiceNumber,
				BalanceDue: invoices[i].BalanceDue,
				DueDate:    invoices[i].DueDate,
				CreatedAt:  invoices[i].CreatedAt,
			}
		}

		amount := valueobject.NewMoneyUSD(req.Amount)
		plan, err := strategy.Allocate(amount, targets)
		if err != nil {
			return err
		}

		number, err := repos.Payments().GeneratePaymentNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}

		payment, err := finance.NewCustomerPayment(number, req.CustomerID, amount,
			valueobject.NewMoneyUSD(req.FeeAmount), req.PaymentDate, req.Method)
		if err != nil {
			return err
		}
		payment.CheckNumber = req.CheckNumber
		payment.Memo = req.Memo
		payment.ARAccountID = req.ARAccountID
		payment.DepositToAccountID = req.DepositToAccountID
		if req.ActorID != nil {
			payment.SetCreatedBy(*req.ActorID)
		}

		byID := make(map[uuid.UUID]*finance.Invoice, len(invoices))
		for i := range invoices {
			byID[invoices[i].ID] = &invoices[i]
		}

		allocations := make([]AppliedAllocationResponse, 0, len(plan.Lines))
		for _, line := range plan.Lines {
			invoice := byID[line.TargetID]
			lineAmount := valueobject.NewMoneyUSD(line.Amount)

			if err := invoice.ApplyAllocation(lineAmount, payment.ID); err != nil {
				return err
			}
			if err := payment.AddAllocation(invoice.ID, invoice.InvoiceNumber, lineAmount); err != nil {
				return err
			}
			if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
				return err
			}

			allocations = append(allocations, AppliedAllocationResponse{
				InvoiceID:     invoice.ID,
				InvoiceNumber: invoice.InvoiceNumber,
				AppliedAmount: line.Amount,
				BalanceDue:    invoice.BalanceDue,
				Status:        invoice.Status.String(),
			})
		}

		if !req.Pending {
			if err := payment.Complete(); err != nil {
				return err
			}
		}

		if err := repos.Payments().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		roots := make([]shared.AggregateRoot, 0, len(invoices)+1)
		for i := range invoices {
			roots = append(roots, &invoices[i])
		}
		roots = append(roots, payment)
		events = shared.CollectEvents(roots...)

		result = &ApplyPaymentResult{
			PaymentID:         payment.ID,
			PaymentNumber:     payment.PaymentNumber,
			CustomerID:        req.CustomerID,
			Status:            string(payment.Status),
			Amount:            payment.Amount,
			AllocatedTotal:    plan.TotalAllocated,
			UnallocatedAmount: plan.RemainingAmount,
			Allocations:       allocations,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

// loadTargets fetches the candidate invoices for allocation. FIFO considers
// every open invoice of the customer; manual mode loads exactly the invoices
// named in the request and checks ownership.
func (s *PaymentService) loadTargets(ctx context.Context, repos TransactionalRepositories, req ApplyPaymentRequest) ([]finance.Invoice, error) {
	if req.Strategy == finance.AllocationStrategyTypeFIFO {
		return repos.Invoices().FindOpenByCustomer(ctx, req.CustomerID)
	}

	ids := make([]uuid.UUID, len(req.Allocations))
	for i, a := range req.Allocations {
		ids[i] = a.InvoiceID
	}
	invoices, err := repos.Invoices().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].CustomerID != req.CustomerID {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Invoice %s does not belong to the customer", invoices[i].InvoiceNumber))
		}
	}
	return invoices, nil
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                uuid.UUID                   `json:"id"`
	PaymentNumber     string                      `json:"payment_number"`
	CounterpartyType  string                      `json:"counterparty_type"`
	CustomerID        *uuid.UUID                  `json:"customer_id,omitempty"`
	SupplierID        *uuid.UUID                  `json:"supplier_id,omitempty"`
	Amount            decimal.Decimal             `json:"amount"`
	FeeAmount         decimal.Decimal             `json:"fee_amount"`
	NetAmount         decimal.Decimal             `json:"net_amount"`
	PaymentDate       time.Time                   `json:"payment_date"`
	Method            string                      `json:"method"`
	Status            string                      `json:"status"`
	CheckNumber       string                      `json:"check_number,omitempty"`
	AllocatedTotal    decimal.Decimal             `json:"allocated_total"`
	UnallocatedAmount decimal.Decimal             `json:"unallocated_amount"`
	Allocations       []AppliedAllocationResponse `json:"allocations,omitempty"`
	IsDeposited       bool                        `json:"is_deposited"`
	DepositID         *uuid.UUID                  `json:"deposit_id,omitempty"`
	Memo              string                      `json:"memo,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
	Version           int                         `json:"version"`
}

// GetPaymentByID gets a payment by ID
func (s *PaymentService) GetPaymentByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	return toPaymentResponse(payment), nil
}

// ListPayments lists payments with pagination
func (s *PaymentService) ListPayments(ctx context.Context, filter shared.Filter) ([]PaymentResponse, int64, error) {
	payments, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, total, nil
}

// ListUndepositedPayments lists completed payments not yet in a deposit
func (s *PaymentService) ListUndepositedPayments(ctx context.Context) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindUndeposited(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, nil
}

// CancelPayment cancels a payment and backs its allocations out of the
// affected invoices in one transaction
func (s *PaymentService) CancelPayment(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.Payments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewDomainError("NOT_FOUND", "Payment not found")
		}

		for _, alloc := range payment.Allocations {
			invoice, err := repos.Invoices().FindByID(ctx, alloc.InvoiceID)
			if err != nil {
				return err
			}
			if invoice == nil {
				return shared.NewDomainError("NOT_FOUND",
					fmt.Sprintf("Invoice %s not found", alloc.InvoiceNumber))
			}
			if err := invoice.ReverseAllocation(valueobject.NewMoneyUSD(alloc.AppliedAmount)); err != nil {
				return err
			}
			if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
				return err
			}
		}

		if err := payment.Cancel(); err != nil {
			return err
		}
		return repos.Payments().Save(ctx, payment)
	})
}

func toPaymentResponse(p *finance.Payment) *PaymentResponse {
	allocations := make([]AppliedAllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = AppliedAllocationResponse{
			InvoiceID:     a.InvoiceID,
			InvoiceNumber: a.InvoiceNumber,
			AppliedAmount: a.AppliedAmount,
		}
	}
	return &PaymentResponse{
		ID:                p.ID,
		PaymentNumber:     p.PaymentNumber,
		CounterpartyType:  string(p.CounterpartyType),
		CustomerID:        p.CustomerID,
		SupplierID:        p.SupplierID,
		Amount:            p.Amount,
		FeeAmount:         p.FeeAmount,
		NetAmount:         p.NetAmount,
		PaymentDate:       p.PaymentDate,
		Method:            string(p.Method),
		Status:            string(p.Status),
		CheckNumber:       p.CheckNumber,
		AllocatedTotal:    p.AllocatedTotal(),
		UnallocatedAmount: p.UnallocatedAmount(),
		Allocations:       allocations,
		IsDeposited:       p.IsDeposited,
		DepositID:         p.DepositID,
		Memo:              p.Memo,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.GetVersion(),
	}
}

func isConcurrencyConflict(err error) bool {
	if err == nil {
		return false
	}
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrConcurrencyConflict.Code
}
