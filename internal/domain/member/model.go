package member

import (
	"time"

	"somiti-server/internal/domain/transaction"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleUser   Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleUser:
		return true
	default:
		return false
	}
}

const (
	CreatedBySelf     = "self"
	CreatedByAssigned = "assigned"
)

type Member struct {
	ID           string     `gorm:"type:uuid;primaryKey" bson:"_id"`
	UID          string     `gorm:"column:uid;index" bson:"uid,omitempty"`
	Email        string     `gorm:"not null;uniqueIndex" bson:"email"`
	Name         string     `gorm:"not null;default:''" bson:"name"`
	Role         Role       `gorm:"type:varchar(16);not null;index" bson:"role"`
	Photo        string     `gorm:"type:text" bson:"photo,omitempty"`
	PhoneNumber  string     `gorm:"column:phone_number" bson:"phoneNumber,omitempty"`
	PasswordHash string     `gorm:"column:password_hash" bson:"password,omitempty"`
	IsActive     bool       `gorm:"column:is_active;not null" bson:"isActive"`
	CreatedBy    string     `gorm:"column:created_by" bson:"createdBy,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index" bson:"createdAt"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" bson:"lastLoginAt,omitempty"`
}

func (Member) TableName() string {
	return "users"
}

// Summary is a directory row: the member plus their net contribution.
type Summary struct {
	Member
	TotalContributions float64
}

type Profile struct {
	Member       Member
	Transactions []transaction.Transaction
}

// Changes is a partial update; nil fields are left as stored.
type Changes struct {
	Role        *Role
	IsActive    *bool
	Name        *string
	PhoneNumber *string
	Photo       *string
	LastLoginAt *time.Time
}

func (c Changes) Empty() bool {
	return c.Role == nil && c.IsActive == nil && c.Name == nil &&
		c.PhoneNumber == nil && c.Photo == nil && c.LastLoginAt == nil
}

type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

type RegisterInput struct {
	Email       string
	Name        string
	Role        Role
	Photo       string
	PhoneNumber string
	UID         string
	CreatedAt   *time.Time
	LastLoginAt *time.Time
}

type AssignInput struct {
	Email       string
	Name        string
	Password    string
	Photo       string
	PhoneNumber string
	Role        Role
}

type StatusInput struct {
	Role        Role
	IsActive    *bool
	Name        string
	PhoneNumber string
	PhotoURL    string
}

type ProfileInput struct {
	Name        string
	PhoneNumber string
	Photo       string
}
