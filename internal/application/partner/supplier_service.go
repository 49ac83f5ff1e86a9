package partner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smberp/backend/internal/domain/partner"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// SupplierService handles supplier master data operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	events       shared.EventPublisher
}

// SupplierServiceOption is a functional option for configuring SupplierService
type SupplierServiceOption func(*SupplierService)

// WithSupplierEvents sets the publisher for supplier domain events
func WithSupplierEvents(events shared.EventPublisher) SupplierServiceOption {
	return func(s *SupplierService) {
		s.events = events
	}
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, opts ...SupplierServiceOption) *SupplierService {
	s := &SupplierService{
		supplierRepo: supplierRepo,
		events:       shared.NopEventPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSupplierRequest creates a new supplier
type CreateSupplierRequest struct {
	Code             string           `json:"code" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Currency         string           `json:"currency" binding:"omitempty,currency"`
	ContactName      string           `json:"contact_name"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Address          *AddressInput    `json:"address"`
	PaymentTermsDays *int             `json:"payment_terms_days"`
	CreditLimit      *decimal.Decimal `json:"credit_limit"`
	Notes            string           `json:"notes"`
	ActorID          *uuid.UUID       `json:"-"`
}

// UpdateSupplierRequest updates a supplier's basic information
type UpdateSupplierRequest struct {
	Name        string        `json:"name" binding:"required"`
	ContactName string        `json:"contact_name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Address     *AddressInput `json:"address"`
	Notes       string        `json:"notes"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Status           string          `json:"status"`
	Currency         string          `json:"currency"`
	ContactName      string          `json:"contact_name,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Email            string          `json:"email,omitempty"`
	Address          string          `json:"address,omitempty"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreateSupplier creates a new supplier
func (s *SupplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	exists, err := s.supplierRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check supplier code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A supplier with this code already exists")
	}

	supplier, err := partner.NewSupplier(req.Code, req.Name, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}
	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := supplier.Update(req.Name, req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.PaymentTermsDays != nil || req.CreditLimit != nil {
		netDays := supplier.PaymentTermsDays
		if req.PaymentTermsDays != nil {
			netDays = *req.PaymentTermsDays
		}
		creditLimit := supplier.CreditLimit
		if req.CreditLimit != nil {
			creditLimit = *req.CreditLimit
		}
		if err := supplier.SetPaymentTerms(netDays, creditLimit); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		addr, err := buildAddress(*req.Address)
		if err != nil {
			return nil, err
		}
		supplier.SetAddress(addr)
	}
	supplier.Notes = req.Notes
	if req.ActorID != nil {
		supplier.SetCreatedBy(*req.ActorID)
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, shared.CollectEvents(supplier)...)
	return toSupplierResponse(supplier), nil
}

// UpdateSupplier updates a supplier's basic information
func (s *SupplierService) UpdateSupplier(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := supplier.Update(req.Name, req.ContactName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if req.Address != nil {
		addr, err := buildAddress(*req.Address)
		if err != nil {
			return nil, err
		}
		supplier.SetAddress(addr)
	}
	supplier.Notes = req.Notes

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// SetSupplierTerms updates a supplier's payment terms and credit limit
func (s *SupplierService) SetSupplierTerms(ctx context.Context, id uuid.UUID, netDays int, creditLimit decimal.Decimal) (*SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.SetPaymentTerms(netDays, creditLimit); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// GetSupplierByID gets a supplier by ID
func (s *SupplierService) GetSupplierByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// GetSupplierByCode gets a supplier by code
func (s *SupplierService) GetSupplierByCode(ctx context.Context, code string) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	return toSupplierResponse(supplier), nil
}

// ListSuppliers lists suppliers with pagination
func (s *SupplierService) ListSuppliers(ctx context.Context, filter shared.Filter) ([]SupplierResponse, int64, error) {
	applyFilterDefaults(&filter)

	suppliers, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = *toSupplierResponse(&suppliers[i])
	}
	return responses, total, nil
}

// DeactivateSupplier marks a supplier inactive
func (s *SupplierService) DeactivateSupplier(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

func (s *SupplierService) findSupplier(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	return supplier, nil
}

func toSupplierResponse(supplier *partner.Supplier) *SupplierResponse {
	return &SupplierResponse{
		ID:               supplier.ID,
		Code:             supplier.Code,
		Name:             supplier.Name,
		Status:           string(supplier.Status),
		Currency:         string(supplier.Currency),
		ContactName:      supplier.ContactName,
		Phone:            supplier.Phone,
		Email:            supplier.Email,
		Address:          supplier.Address.String(),
		PaymentTermsDays: supplier.PaymentTermsDays,
		CreditLimit:      supplier.CreditLimit,
		Notes:            supplier.Notes,
		CreatedAt:        supplier.CreatedAt,
		UpdatedAt:        supplier.UpdatedAt,
	}
}
