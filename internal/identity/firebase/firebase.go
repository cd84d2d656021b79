// Package firebase manages Firebase Authentication accounts through the
// Identity Toolkit relying-party API using service-account credentials.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"somiti-server/internal/config"
	"somiti-server/internal/identity"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	firebaseScope      = "https://www.googleapis.com/auth/firebase"
)

type Provider struct {
	relyingParty *identitytoolkit.RelyingpartyService
	timeout      time.Duration
}

func New(ctx context.Context, cfg config.IdentityConfig) (*Provider, error) {
	opts := []option.ClientOption{option.WithScopes(cloudPlatformScope, firebaseScope)}

	switch {
	case cfg.ServiceAccount.Configured():
		credentials, err := json.Marshal(cfg.ServiceAccount)
		if err != nil {
			return nil, fmt.Errorf("encode service account: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(credentials))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, errors.New("firebase credentials not configured")
	}

	service, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Provider{relyingParty: service.Relyingparty, timeout: timeout}, nil
}

func (p *Provider) CreateAccount(ctx context.Context, input identity.CreateAccountInput) (*identity.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	created, err := p.relyingParty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		PhotoUrl:    input.PhotoURL,
	}).Context(ctx).Do()
	if err != nil {
		if strings.Contains(err.Error(), "EMAIL_EXISTS") {
			return nil, identity.ErrEmailExists
		}
		return nil, fmt.Errorf("signup new user: %w", err)
	}

	// Signup does not echo account metadata, read it back for the timestamps.
	account, err := p.lookup(ctx, &identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		LocalId: []string{created.LocalId},
	})
	if err != nil {
		return &identity.Account{
			UID:         created.LocalId,
			Email:       input.Email,
			DisplayName: input.DisplayName,
			PhotoURL:    input.PhotoURL,
			CreatedAt:   time.Now().UTC(),
		}, nil
	}
	return account, nil
}

func (p *Provider) DeleteAccount(ctx context.Context, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.relyingParty.DeleteAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDeleteAccountRequest{
		LocalId: uid,
	}).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return identity.ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (p *Provider) GetAccountByEmail(ctx context.Context, email string) (*identity.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.lookup(ctx, &identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		Email: []string{email},
	})
}

func (p *Provider) UpdateAccount(ctx context.Context, uid string, input identity.UpdateAccountInput) error {
	if input.Empty() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := &identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{LocalId: uid}
	if input.DisplayName != nil {
		req.DisplayName = *input.DisplayName
	}
	if input.PhotoURL != nil {
		req.PhotoUrl = *input.PhotoURL
	}

	if _, err := p.relyingParty.SetAccountInfo(req).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return identity.ErrAccountNotFound
		}
		return fmt.Errorf("set account info: %w", err)
	}
	return nil
}

func (p *Provider) lookup(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest) (*identity.Account, error) {
	resp, err := p.relyingParty.GetAccountInfo(req).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, identity.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account info: %w", err)
	}
	if len(resp.Users) == 0 || resp.Users[0] == nil {
		return nil, identity.ErrAccountNotFound
	}
	return toAccount(resp.Users[0]), nil
}

func toAccount(user *identitytoolkit.UserInfo) *identity.Account {
	account := &identity.Account{
		UID:         user.LocalId,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoUrl,
	}
	if user.CreatedAt > 0 {
		account.CreatedAt = time.UnixMilli(user.CreatedAt).UTC()
	}
	if user.LastLoginAt > 0 {
		lastLogin := time.UnixMilli(user.LastLoginAt).UTC()
		account.LastLoginAt = &lastLogin
	}
	return account
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound {
			return true
		}
		return strings.Contains(apiErr.Message, "USER_NOT_FOUND")
	}
	return strings.Contains(err.Error(), "USER_NOT_FOUND")
}
