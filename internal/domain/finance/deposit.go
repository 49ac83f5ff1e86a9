package finance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// DepositStatus represents the status of a bank deposit
type DepositStatus string

const (
	DepositStatusRecorded DepositStatus = "RECORDED"
	DepositStatusVoided   DepositStatus = "VOIDED"
)

// DepositMember is one payment included in a deposit, stored as JSONB
type DepositMember struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// DepositMembers is a slice of DepositMember implementing GORM Scanner/Valuer for JSONB storage
type DepositMembers []DepositMember

// Value implements driver.Valuer interface for GORM to store as JSONB
func (m DepositMembers) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (m *DepositMembers) Scan(value interface{}) error {
	if value == nil {
		*m = DepositMembers{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan DepositMembers: unsupported type")
	}

	if len(bytes) == 0 {
		*m = DepositMembers{}
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Deposit groups previously recorded payments into one bank deposit.
// The total is always derived from the member amounts, never taken from
// client input.
type Deposit struct {
	shared.BaseAggregateRoot
	DepositNumber string               `json:"deposit_number"`
	BankAccountID uuid.UUID            `json:"bank_account_id"`
	DepositDate   time.Time            `json:"deposit_date"`
	Currency      valueobject.Currency `json:"currency"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Members       DepositMembers       `json:"members"`
	Status        DepositStatus        `json:"status"`
	Memo          string               `json:"memo"`
	VoidedAt      *time.Time           `json:"voided_at"`
	VoidReason    string               `json:"void_reason"`
}

// TableName returns the table name for GORM
func (Deposit) TableName() string {
	return "deposits"
}

// NewDeposit creates a deposit from the given member payments.
// The total amount is computed from the members.
func NewDeposit(depositNumber string, bankAccountID uuid.UUID, depositDate time.Time, memo string, members []DepositMember) (*Deposit, error) {
	if depositNumber == "" || len(depositNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_DEPOSIT_NUMBER", "Deposit number must be 1-50 characters")
	}
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank account ID cannot be empty")
	}
	if len(members) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "A deposit requires at least one payment")
	}

	total := decimal.Zero
	seen := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		if seen[m.PaymentID] {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Payment %s is listed more than once", m.PaymentNumber))
		}
		seen[m.PaymentID] = true
		if m.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT",
				fmt.Sprintf("Payment %s has a non-positive amount", m.PaymentNumber))
		}
		total = total.Add(m.Amount)
	}

	dep := &Deposit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DepositNumber:     depositNumber,
		BankAccountID:     bankAccountID,
		DepositDate:       depositDate,
		Currency:          valueobject.DefaultCurrency,
		TotalAmount:       total,
		Members:           members,
		Status:            DepositStatusRecorded,
		Memo:              memo,
	}

	dep.AddDomainEvent(NewDepositRecordedEvent(dep))

	return dep, nil
}

// VerifyClientTotal cross-checks a client-supplied total against the derived
// total and rejects on mismatch, so client and server arithmetic can never
// drift silently.
func (d *Deposit) VerifyClientTotal(clientTotal decimal.Decimal) error {
	if !clientTotal.Equal(d.TotalAmount) {
		return shared.NewDomainError("DEPOSIT_TOTAL_MISMATCH",
			fmt.Sprintf("Client total %s does not match derived total %s",
				clientTotal.StringFixed(2), d.TotalAmount.StringFixed(2)))
	}
	return nil
}

// Void voids the deposit; member payments must be released by the caller
// within the same transaction.
func (d *Deposit) Void(reason string) error {
	if d.Status == DepositStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Deposit is already voided")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Void reason is required")
	}

	now := time.Now()
	d.Status = DepositStatusVoided
	d.VoidedAt = &now
	d.VoidReason = reason
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDepositVoidedEvent(d))

	return nil
}

// PaymentIDs returns the IDs of all member payments
func (d *Deposit) PaymentIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(d.Members))
	for i, m := range d.Members {
		ids[i] = m.PaymentID
	}
	return ids
}

// MemberCount returns the number of payments in the deposit
func (d *Deposit) MemberCount() int {
	return len(d.Members)
}
