package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAccountNotFound = errors.New("identity account not found")
	ErrEmailExists     = errors.New("identity account email already exists")
)

type Account struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

type CreateAccountInput struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
}

// UpdateAccountInput leaves nil fields untouched.
type UpdateAccountInput struct {
	DisplayName *string
	PhotoURL    *string
}

func (in UpdateAccountInput) Empty() bool {
	return in.DisplayName == nil && in.PhotoURL == nil
}

type Provider interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error)
	DeleteAccount(ctx context.Context, uid string) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdateAccount(ctx context.Context, uid string, input UpdateAccountInput) error
}
