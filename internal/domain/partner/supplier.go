package partner

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "ACTIVE"
	SupplierStatusInactive SupplierStatus = "INACTIVE"
)

// Supplier is the aggregate root for a vendor who owns purchase orders and bills
type Supplier struct {
	shared.BaseAggregateRoot
	Code        string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string               `gorm:"type:varchar(200);not null"`
	Status      SupplierStatus       `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	ContactName string               `gorm:"type:varchar(100)"`
	Phone       string               `gorm:"type:varchar(50);index"`
	Email       string               `gorm:"type:varchar(200);index"`
	Address     valueobject.Address  `gorm:"type:jsonb"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	CreditLimit decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	// PaymentTermsDays is the net payment term; bill due dates default to
	// bill date plus this many days.
	PaymentTermsDays int    `gorm:"not null;default:30"`
	Notes            string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(code, name string, currency valueobject.Currency) (*Supplier, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !customerCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code must be 2-50 uppercase alphanumeric characters")
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	supplier := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            SupplierStatusActive,
		Currency:          currency,
		CreditLimit:       decimal.Zero,
		PaymentTermsDays:  30,
	}

	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))

	return supplier, nil
}

// Update updates the supplier's basic information
func (s *Supplier) Update(name, contactName, phone, email string) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}

	s.Name = name
	s.ContactName = contactName
	s.Phone = phone
	s.Email = email
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetPaymentTerms sets the supplier's net days and credit limit
func (s *Supplier) SetPaymentTerms(netDays int, creditLimit decimal.Decimal) error {
	if netDays < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment term days cannot be negative")
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}

	s.PaymentTermsDays = netDays
	s.CreditLimit = creditLimit
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetAddress replaces the supplier's address
func (s *Supplier) SetAddress(addr valueobject.Address) {
	s.Address = addr
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Deactivate marks the supplier inactive
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.ErrInvalidState
	}
	s.Status = SupplierStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// IsActive returns true if new documents may be created for the supplier
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// DefaultDueDate computes the due date for a document dated docDate
func (s *Supplier) DefaultDueDate(docDate time.Time) time.Time {
	return docDate.AddDate(0, 0, s.PaymentTermsDays)
}
