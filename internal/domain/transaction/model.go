package transaction

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeDeposit  Type = "Deposit"
	TypeWithdraw Type = "Withdraw"
	TypePenalty  Type = "Penalty"
	// TypeWithdrawal is a legacy spelling still present in stored data. It
	// counts as a withdrawal everywhere.
	TypeWithdrawal Type = "Withdrawal"
)

// Valid is case- and spelling-sensitive.
func (t Type) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdraw, TypeWithdrawal, TypePenalty:
		return true
	default:
		return false
	}
}

func (t Type) IsWithdraw() bool {
	return t == TypeWithdraw || t == TypeWithdrawal
}

const dateLayout = "2006-01-02"

type Transaction struct {
	ID              string    `gorm:"type:uuid;primaryKey" bson:"_id"`
	MemberID        string    `gorm:"column:member_id;index" bson:"memberId,omitempty"`
	MemberEmail     string    `gorm:"column:member_email;index" bson:"memberEmail,omitempty"`
	MemberName      string    `gorm:"column:member_name" bson:"memberName,omitempty"`
	Type            Type      `gorm:"type:varchar(16);not null;index" bson:"type"`
	Amount          float64   `gorm:"type:numeric(14,2);not null" bson:"amount"`
	PaymentMethod   string    `gorm:"column:payment_method" bson:"paymentMethod,omitempty"`
	Date            string    `gorm:"type:varchar(32);not null;index" bson:"date"`
	ApprovedBy      string    `gorm:"column:approved_by" bson:"approvedBy,omitempty"`
	ApprovedByEmail string    `gorm:"column:approved_by_email;index" bson:"approvedByEmail,omitempty"`
	Note            string    `gorm:"type:text" bson:"note,omitempty"`
	CreatedAt       time.Time `gorm:"not null" bson:"createdAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// DateRange bounds are compared to Transaction.Date as plain strings, so they
// only order correctly for zero-padded YYYY-MM-DD values. Both ends are
// inclusive; an empty bound is open.
type DateRange struct {
	Start string
	End   string
}

func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// ParseDateRange validates both bounds as YYYY-MM-DD. Filtering still uses
// string comparison.
func ParseDateRange(start, end string) (DateRange, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	if start != "" {
		if _, err := time.Parse(dateLayout, start); err != nil {
			return DateRange{}, fmt.Errorf("startDate must be YYYY-MM-DD: %w", ErrInvalidDate)
		}
	}
	if end != "" {
		if _, err := time.Parse(dateLayout, end); err != nil {
			return DateRange{}, fmt.Errorf("endDate must be YYYY-MM-DD: %w", ErrInvalidDate)
		}
	}
	if start != "" && end != "" && start > end {
		return DateRange{}, fmt.Errorf("startDate must be <= endDate: %w", ErrInvalidDate)
	}

	return DateRange{Start: start, End: end}, nil
}

type ListFilter struct {
	MemberID    string
	MemberEmail string
	Type        Type
	Range       DateRange
}

// MemberRef selects a member's transactions by id or email; either may be
// empty but not both.
type MemberRef struct {
	ID    string
	Email string
}

type CreateInput struct {
	MemberID        string
	MemberEmail     string
	MemberName      string
	Type            Type
	Amount          float64
	PaymentMethod   string
	Date            string
	ApprovedBy      string
	ApprovedByEmail string
	Note            string
}
