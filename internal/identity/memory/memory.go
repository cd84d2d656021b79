// Package memory keeps identity accounts in process memory. It backs local
// development (IDENTITY_PROVIDER=memory) and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"somiti-server/internal/identity"
)

type Provider struct {
	mu       sync.RWMutex
	accounts map[string]identity.Account
	now      func() time.Time
}

func New() *Provider {
	return &Provider{
		accounts: make(map[string]identity.Account),
		now:      time.Now,
	}
}

func (p *Provider) CreateAccount(ctx context.Context, input identity.CreateAccountInput) (*identity.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, account := range p.accounts {
		if strings.EqualFold(account.Email, email) {
			return nil, identity.ErrEmailExists
		}
	}

	account := identity.Account{
		UID:         strings.ReplaceAll(uuid.NewString(), "-", ""),
		Email:       input.Email,
		DisplayName: input.DisplayName,
		PhotoURL:    input.PhotoURL,
		CreatedAt:   p.now().UTC(),
	}
	p.accounts[account.UID] = account
	return &account, nil
}

func (p *Provider) DeleteAccount(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[uid]; !ok {
		return identity.ErrAccountNotFound
	}
	delete(p.accounts, uid)
	return nil
}

func (p *Provider) GetAccountByEmail(ctx context.Context, email string) (*identity.Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, account := range p.accounts {
		if strings.EqualFold(account.Email, email) {
			found := account
			return &found, nil
		}
	}
	return nil, identity.ErrAccountNotFound
}

func (p *Provider) UpdateAccount(ctx context.Context, uid string, input identity.UpdateAccountInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.accounts[uid]
	if !ok {
		return identity.ErrAccountNotFound
	}
	if input.DisplayName != nil {
		account.DisplayName = *input.DisplayName
	}
	if input.PhotoURL != nil {
		account.PhotoURL = *input.PhotoURL
	}
	p.accounts[uid] = account
	return nil
}

// Seed registers an existing account, e.g. one created outside the service.
func (p *Provider) Seed(account identity.Account) {
	p.mu.Lock()
	p.accounts[account.UID] = account
	p.mu.Unlock()
}
