package partner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smberp/backend/internal/domain/partner"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// CustomerService handles customer master data operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	events       shared.EventPublisher
}

// CustomerServiceOption is a functional option for configuring CustomerService
type CustomerServiceOption func(*CustomerService)

// WithCustomerEvents sets the publisher for customer domain events
func WithCustomerEvents(events shared.EventPublisher) CustomerServiceOption {
	return func(s *CustomerService) {
		s.events = events
	}
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, opts ...CustomerServiceOption) *CustomerService {
	s := &CustomerService{
		customerRepo: customerRepo,
		events:       shared.NopEventPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddressInput carries an optional mailing address on create and update requests
type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CreateCustomerRequest creates a new customer
type CreateCustomerRequest struct {
	Code        string        `json:"code" binding:"required"`
	Name        string        `json:"name" binding:"required"`
	ContactName string        `json:"contact_name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Address     *AddressInput `json:"address"`
	Notes       string        `json:"notes"`
	ActorID     *uuid.UUID    `json:"-"`
}

// UpdateCustomerRequest updates a customer's basic information
type UpdateCustomerRequest struct {
	Name        string        `json:"name" binding:"required"`
	ContactName string        `json:"contact_name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Address     *AddressInput `json:"address"`
	Notes       string        `json:"notes"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	ContactName string    `json:"contact_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check customer code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A customer with this code already exists")
	}

	customer, err := partner.NewCustomer(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := customer.Update(req.Name, req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		addr, err := buildAddress(*req.Address)
		if err != nil {
			return nil, err
		}
		customer.SetAddress(addr)
	}
	customer.Notes = req.Notes
	if req.ActorID != nil {
		customer.SetCreatedBy(*req.ActorID)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, shared.CollectEvents(customer)...)
	return toCustomerResponse(customer), nil
}

// UpdateCustomer updates a customer's basic information
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.findCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := customer.Update(req.Name, req.ContactName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if req.Address != nil {
		addr, err := buildAddress(*req.Address)
		if err != nil {
			return nil, err
		}
		customer.SetAddress(addr)
	}
	customer.Notes = req.Notes

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetCustomerByID gets a customer by ID
func (s *CustomerService) GetCustomerByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.findCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetCustomerByCode gets a customer by code
func (s *CustomerService) GetCustomerByCode(ctx context.Context, code string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}
	return toCustomerResponse(customer), nil
}

// ListCustomers lists customers with pagination
func (s *CustomerService) ListCustomers(ctx context.Context, filter shared.Filter) ([]CustomerResponse, int64, error) {
	applyFilterDefaults(&filter)

	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = *toCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// DeactivateCustomer marks a customer inactive; its open invoices remain collectible
func (s *CustomerService) DeactivateCustomer(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.findCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// ActivateCustomer marks a customer active again
func (s *CustomerService) ActivateCustomer(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.findCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Activate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

func (s *CustomerService) findCustomer(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}
	return customer, nil
}

func buildAddress(in AddressInput) (valueobject.Address, error) {
	opts := make([]valueobject.AddressOption, 0, 3)
	if in.State != "" {
		opts = append(opts, valueobject.WithState(in.State))
	}
	if in.PostalCode != "" {
		opts = append(opts, valueobject.WithPostalCode(in.PostalCode))
	}
	if in.Country != "" {
		opts = append(opts, valueobject.WithCountry(in.Country))
	}
	addr, err := valueobject.NewAddress(in.Street, in.City, opts...)
	if err != nil {
		return valueobject.Address{}, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	return addr, nil
}

func applyFilterDefaults(filter *shared.Filter) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
}

func toCustomerResponse(customer *partner.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:          customer.ID,
		Code:        customer.Code,
		Name:        customer.Name,
		Status:      string(customer.Status),
		ContactName: customer.ContactName,
		Phone:       customer.Phone,
		Email:       customer.Email,
		Address:     customer.Address.String(),
		Notes:       customer.Notes,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}
