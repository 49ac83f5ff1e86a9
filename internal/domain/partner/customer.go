package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "ACTIVE"
	CustomerStatusInactive CustomerStatus = "INACTIVE"
)

var customerCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{1,49}$`)

// Customer is the aggregate root for a buyer who owns invoices
type Customer struct {
	shared.BaseAggregateRoot
	Code        string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string              `gorm:"type:varchar(200);not null"`
	Status      CustomerStatus      `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	ContactName string              `gorm:"type:varchar(100)"`
	Phone       string              `gorm:"type:varchar(50);index"`
	Email       string              `gorm:"type:varchar(200);index"`
	Address     valueobject.Address `gorm:"type:jsonb"`
	Notes       string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with required fields
func NewCustomer(code, name string) (*Customer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !customerCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code must be 2-50 uppercase alphanumeric characters")
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            CustomerStatusActive,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name, contactName, phone, email string) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}

	c.Name = name
	c.ContactName = contactName
	c.Phone = phone
	c.Email = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetAddress replaces the customer's address
func (c *Customer) SetAddress(addr valueobject.Address) {
	c.Address = addr
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate marks the customer inactive; existing invoices are unaffected
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.ErrInvalidState
	}
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate marks the customer active
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.ErrInvalidState
	}
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsActive returns true if new documents may be created for the customer
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func validatePartnerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
