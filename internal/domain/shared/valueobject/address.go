package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is an immutable value object for a postal address.
// Street and city are required; the rest is optional.
type Address struct {
	street     string
	city       string
	state      string
	postalCode string
	country    string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithState sets the state or province
func WithState(state string) AddressOption {
	return func(a *Address) {
		a.state = strings.TrimSpace(state)
	}
}

// WithPostalCode sets the postal code
func WithPostalCode(postalCode string) AddressOption {
	return func(a *Address) {
		a.postalCode = strings.TrimSpace(postalCode)
	}
}

// WithCountry sets the country
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address
func NewAddress(street, city string, opts ...AddressOption) (Address, error) {
	street = strings.TrimSpace(street)
	city = strings.TrimSpace(city)

	if street == "" {
		return Address{}, fmt.Errorf("street cannot be empty")
	}
	if len(street) > 200 {
		return Address{}, fmt.Errorf("street cannot exceed 200 characters")
	}
	if city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if len(city) > 100 {
		return Address{}, fmt.Errorf("city cannot exceed 100 characters")
	}

	addr := Address{
		street:  street,
		city:    city,
		country: "US",
	}
	for _, opt := range opts {
		opt(&addr)
	}

	if len(addr.state) > 100 {
		return Address{}, fmt.Errorf("state cannot exceed 100 characters")
	}
	if len(addr.postalCode) > 20 {
		return Address{}, fmt.Errorf("postal code cannot exceed 20 characters")
	}
	if len(addr.country) > 100 {
		return Address{}, fmt.Errorf("country cannot exceed 100 characters")
	}

	return addr, nil
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// Street returns the street line
func (a Address) Street() string { return a.street }

// City returns the city
func (a Address) City() string { return a.city }

// State returns the state or province
func (a Address) State() string { return a.state }

// PostalCode returns the postal code
func (a Address) PostalCode() string { return a.postalCode }

// Country returns the country
func (a Address) Country() string { return a.country }

// IsEmpty returns true if the address has no content
func (a Address) IsEmpty() bool {
	return a.street == "" && a.city == ""
}

// String returns the single-line formatted address
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, 5)
	for _, p := range []string{a.street, a.city, a.state, a.postalCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a == other
}

type addressJSON struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Street:     a.street,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Empty addresses are allowed so
// that optional JSON columns round-trip cleanly.
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Street == "" && v.City == "" {
		*a = EmptyAddress()
		return nil
	}
	addr, err := NewAddress(v.Street, v.City,
		WithState(v.State), WithPostalCode(v.PostalCode), WithCountry(v.Country))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer for database storage as JSON
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = EmptyAddress()
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*a = EmptyAddress()
		return nil
	}

	return json.Unmarshal(data, a)
}
