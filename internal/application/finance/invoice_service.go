package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smberp/backend/internal/domain/finance"
	"github.com/smberp/backend/internal/domain/partner"
	"github.com/smberp/backend/internal/domain/shared"
)

// InvoiceService handles invoice lifecycle operations
type InvoiceService struct {
	invoiceRepo  finance.InvoiceRepository
	customerRepo partner.CustomerRepository
	scope        TransactionScope
	events       shared.EventPublisher
}

// InvoiceServiceOption is a functional option for configuring InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithInvoiceEvents sets the publisher for invoice domain events
func WithInvoiceEvents(events shared.EventPublisher) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.events = events
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo finance.InvoiceRepository, customerRepo partner.CustomerRepository, scope TransactionScope, opts ...InvoiceServiceOption) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		scope:        scope,
		events:       shared.NopEventPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InvoiceLineInput is one line on an invoice creation request
type InvoiceLineInput struct {
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest creates a new invoice
type CreateInvoiceRequest struct {
	CustomerID     uuid.UUID
	InvoiceDate    time.Time
	DueDate        *time.Time
	Lines          []InvoiceLineInput
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	Memo           string
	Finalize       bool
	ActorID        *uuid.UUID
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	CustomerName    string                `json:"customer_name"`
	InvoiceDate     time.Time             `json:"invoice_date"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	Lines           []InvoiceLineResponse `json:"lines"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	ShippingAmount  decimal.Decimal       `json:"shipping_amount"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	BalanceDue      decimal.Decimal       `json:"balance_due"`
	Status          string                `json:"status"`
	EffectiveStatus string                `json:"effective_status"`
	DaysOverdue     int                   `json:"days_overdue,omitempty"`
	Memo            string                `json:"memo,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// CreateInvoice creates an invoice for a customer, optionally finalizing it
// in the same call
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "An invoice requires at least one line")
	}

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}
	if !customer.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot invoice an inactive customer")
	}

	var response *InvoiceResponse
	var events []shared.DomainEvent
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.Invoices().GenerateInvoiceNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate invoice number: %w", err)
		}

		invoice, err := finance.NewInvoice(number, customer.ID, customer.Name, req.InvoiceDate, req.DueDate)
		if err != nil {
			return err
		}
		invoice.Memo = req.Memo
		if req.ActorID != nil {
			invoice.SetCreatedBy(*req.ActorID)
		}

		for _, line := range req.Lines {
			if err := invoice.AddLine(line.ItemID, line.Description, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
		}
		if err := invoice.SetCharges(req.TaxAmount, req.DiscountAmount, req.ShippingAmount); err != nil {
			return err
		}
		if req.Finalize {
			if err := invoice.Finalize(); err != nil {
				return err
			}
		}

		if err := repos.Invoices().Save(ctx, invoice); err != nil {
			return err
		}
		events = shared.CollectEvents(invoice)
		response = toInvoiceResponse(invoice, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events...)
	return response, nil
}

// FinalizeInvoice moves a draft invoice to UNPAID
func (s *InvoiceService) FinalizeInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.Invoices().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		if err := invoice.Finalize(); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		events = shared.CollectEvents(invoice)
		response = toInvoiceResponse(invoice, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events...)
	return response, nil
}

// GetInvoiceByID gets an invoice by ID with its effective status
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return toInvoiceResponse(invoice, time.Now()), nil
}

// ListInvoices lists invoices with pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, filter shared.Filter) ([]InvoiceResponse, int64, error) {
	invoices, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i], now)
	}
	return responses, total, nil
}

// ListOpenInvoicesByCustomer lists a customer's invoices that still carry a
// balance, in the order FIFO allocation would consume them
func (s *InvoiceService) ListOpenInvoicesByCustomer(ctx context.Context, customerID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindOpenByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i], now)
	}
	return responses, nil
}

func toInvoiceResponse(inv *finance.Invoice, now time.Time) *InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ID:          l.ID,
			ItemID:      l.ItemID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		}
	}
	return &InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		InvoiceDate:     inv.InvoiceDate,
		DueDate:         inv.DueDate,
		Lines:           lines,
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		DiscountAmount:  inv.DiscountAmount,
		ShippingAmount:  inv.ShippingAmount,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		BalanceDue:      inv.BalanceDue,
		Status:          inv.Status.String(),
		EffectiveStatus: inv.EffectiveStatus(now).String(),
		DaysOverdue:     inv.DaysOverdue(now),
		Memo:            inv.Memo,
		PaidAt:          inv.PaidAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		Version:         inv.GetVersion(),
	}
}
