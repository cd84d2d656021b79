package member

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"somiti-server/internal/domain/transaction"
	"somiti-server/internal/identity"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidID reports whether id has the shape of a stored member id.
func ValidID(id string) bool {
	return transaction.ValidID(id)
}

type Service struct {
	repo         Repository
	transactions TransactionReader
	identity     identity.Provider
	bcryptCost   int
	now          func() time.Time
}

func NewService(repo Repository, transactions TransactionReader, provider identity.Provider, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:         repo,
		transactions: transactions,
		identity:     provider,
		bcryptCost:   bcryptCost,
		now:          time.Now,
	}
}

// Register stores a self-signed-up user. An existing email is not an error:
// the stored record is returned with created=false. The role defaults to
// user when the input leaves it empty.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Member, bool, error) {
	email := strings.TrimSpace(input.Email)
	if !ValidEmail(email) {
		return nil, false, ErrInvalidEmail
	}
	role := RoleUser
	if input.Role != "" {
		if !input.Role.Valid() {
			return nil, false, ErrInvalidRole
		}
		role = input.Role
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrMemberNotFound) {
		return nil, false, err
	}

	createdAt := s.now().UTC()
	if input.CreatedAt != nil && !input.CreatedAt.IsZero() {
		createdAt = input.CreatedAt.UTC()
	}

	m := Member{
		ID:          uuid.NewString(),
		UID:         strings.TrimSpace(input.UID),
		Email:       email,
		Name:        strings.TrimSpace(input.Name),
		Role:        role,
		Photo:       strings.TrimSpace(input.Photo),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		IsActive:    true,
		CreatedBy:   CreatedBySelf,
		CreatedAt:   createdAt,
		LastLoginAt: input.LastLoginAt,
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		// Lost a race with a concurrent registration of the same email.
		var taken *EmailTakenError
		if errors.As(err, &taken) && taken.Existing != nil {
			return taken.Existing, false, nil
		}
		return nil, false, err
	}
	return &m, true, nil
}

// Assign creates an account on behalf of a user: identity account first, then
// the member record. A failed store write leaves the identity account in
// place; there is no compensation across the two stores.
func (s *Service) Assign(ctx context.Context, input AssignInput) (*Member, error) {
	email := strings.TrimSpace(input.Email)
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	role := input.Role
	if role == "" {
		role = RoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if input.Password != "" && len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, &EmailTakenError{Existing: existing}
	}
	if !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}

	var passwordHash string
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = string(hashed)
	}

	account, err := s.identity.CreateAccount(ctx, identity.CreateAccountInput{
		Email:       email,
		Password:    input.Password,
		DisplayName: strings.TrimSpace(input.Name),
		PhotoURL:    strings.TrimSpace(input.Photo),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create account: %v", ErrIdentityFailure, err)
	}

	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}

	m := Member{
		ID:           uuid.NewString(),
		UID:          account.UID,
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		Photo:        strings.TrimSpace(input.Photo),
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedBy:    CreatedByAssigned,
		CreatedAt:    createdAt,
		LastLoginAt:  account.LastLoginAt,
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the directory with each member's net contribution, joined to
// transactions by email.
func (s *Service) List(ctx context.Context, query Query) ([]Summary, error) {
	members, err := s.repo.List(ctx, query.StoreCriteria())
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.List(ctx, transaction.ListFilter{})
	if err != nil {
		return nil, err
	}
	byEmail := transaction.GroupByEmail(txs)

	ranges := query.contributionRanges()
	result := make([]Summary, 0, len(members))
	for _, m := range members {
		total := transaction.ComputeContribution(byEmail[m.Email]).TotalContribution
		if !inAllRanges(ranges, total) {
			continue
		}
		result = append(result, Summary{Member: m, TotalContributions: total})
	}

	sortSummaries(result, query.Sort)
	return result, nil
}

// Profile looks the member up by id, then by email, and returns their
// transactions newest first.
func (s *Service) Profile(ctx context.Context, id, email string) (*Profile, error) {
	id = strings.TrimSpace(id)
	email = strings.TrimSpace(email)
	validID := id != "" && ValidID(id)
	if !validID && email == "" {
		return nil, ErrLookupRequired
	}

	var (
		found *Member
		err   error
	)
	if validID {
		found, err = s.repo.GetByID(ctx, id)
		if err != nil && !errors.Is(err, ErrMemberNotFound) {
			return nil, err
		}
	}
	if found == nil && email != "" {
		found, err = s.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}
	if found == nil {
		return nil, ErrMemberNotFound
	}

	// Transactions may carry only one of the two references.
	ref := transaction.MemberRef{ID: found.ID, Email: found.Email}
	txs, err := s.transactions.ListByMember(ctx, ref)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []transaction.Transaction{}
	}

	return &Profile{Member: *found, Transactions: txs}, nil
}

// UpdateStatus writes only the fields that differ from the stored record.
// When the name or photo is supplied the identity account is updated after
// the store write; an identity failure is reported without undoing the store
// write.
func (s *Service) UpdateStatus(ctx context.Context, id string, input StatusInput) (UpdateResult, error) {
	if !ValidID(id) {
		return UpdateResult{}, ErrInvalidID
	}
	if input.Role != "" && !input.Role.Valid() {
		return UpdateResult{}, ErrInvalidRole
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}
	if current.Email == "" {
		return UpdateResult{}, ErrMissingEmail
	}

	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.PhoneNumber)
	photo := strings.TrimSpace(input.PhotoURL)

	var changes Changes
	if input.Role != "" && input.Role != current.Role {
		changes.Role = &input.Role
	}
	if input.IsActive != nil && *input.IsActive != current.IsActive {
		changes.IsActive = input.IsActive
	}
	if name != "" && name != current.Name {
		changes.Name = &name
	}
	if phone != "" && phone != current.PhoneNumber {
		changes.PhoneNumber = &phone
	}
	if photo != "" {
		changes.Photo = &photo
	}

	if changes.Empty() {
		return UpdateResult{}, nil
	}

	result, err := s.repo.UpdateByID(ctx, id, changes)
	if err != nil {
		return UpdateResult{}, err
	}

	if name != "" || photo != "" {
		var update identity.UpdateAccountInput
		if changes.Name != nil {
			update.DisplayName = changes.Name
		}
		if changes.Photo != nil {
			update.PhotoURL = changes.Photo
		}
		if !update.Empty() {
			account, err := s.identity.GetAccountByEmail(ctx, current.Email)
			if err != nil {
				return result, fmt.Errorf("%w: lookup account: %v", ErrIdentityFailure, err)
			}
			if err := s.identity.UpdateAccount(ctx, account.UID, update); err != nil {
				return result, fmt.Errorf("%w: update account: %v", ErrIdentityFailure, err)
			}
		}
	}

	return result, nil
}

func (s *Service) UpdateProfile(ctx context.Context, email string, input ProfileInput) (UpdateResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return UpdateResult{}, ErrInvalidEmail
	}

	var changes Changes
	if name := strings.TrimSpace(input.Name); name != "" {
		changes.Name = &name
	}
	if phone := strings.TrimSpace(input.PhoneNumber); phone != "" {
		changes.PhoneNumber = &phone
	}
	if photo := strings.TrimSpace(input.Photo); photo != "" {
		changes.Photo = &photo
	}
	if changes.Empty() {
		return UpdateResult{}, nil
	}

	result, err := s.repo.UpdateByEmail(ctx, email, changes)
	if err != nil {
		return UpdateResult{}, err
	}
	if result.MatchedCount == 0 {
		return result, ErrMemberNotFound
	}
	return result, nil
}

func (s *Service) TouchLastLogin(ctx context.Context, email string, at time.Time) (UpdateResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return UpdateResult{}, ErrInvalidEmail
	}
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	result, err := s.repo.UpdateByEmail(ctx, email, Changes{LastLoginAt: &at})
	if err != nil {
		return UpdateResult{}, err
	}
	if result.MatchedCount == 0 {
		return result, ErrMemberNotFound
	}
	return result, nil
}

// Delete removes the identity account and then the member record. Returns
// the identity uid that was removed.
func (s *Service) Delete(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return "", ErrInvalidEmail
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing.UID == "" {
		return "", ErrMissingUID
	}

	if err := s.identity.DeleteAccount(ctx, existing.UID); err != nil && !errors.Is(err, identity.ErrAccountNotFound) {
		return "", fmt.Errorf("%w: delete account: %v", ErrIdentityFailure, err)
	}

	deleted, err := s.repo.DeleteByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !deleted {
		return "", ErrNotDeleted
	}
	return existing.UID, nil
}

func inAllRanges(ranges []ContributionRange, value float64) bool {
	for _, r := range ranges {
		if !r.Contains(value) {
			return false
		}
	}
	return true
}

func sortSummaries(items []Summary, order Sort) {
	if order.Field == "" {
		order = DefaultSort
	}
	less := lessFor(order.Field)
	sort.SliceStable(items, func(i, j int) bool {
		if order.Descending {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func lessFor(field string) func(a, b Summary) bool {
	switch field {
	case FieldName:
		return func(a, b Summary) bool { return a.Name < b.Name }
	case FieldEmail:
		return func(a, b Summary) bool { return a.Email < b.Email }
	case FieldRole:
		return func(a, b Summary) bool { return a.Role < b.Role }
	case FieldPhoneNumber:
		return func(a, b Summary) bool { return a.PhoneNumber < b.PhoneNumber }
	case FieldIsActive:
		return func(a, b Summary) bool { return !a.IsActive && b.IsActive }
	case FieldTotalContributions:
		return func(a, b Summary) bool { return a.TotalContributions < b.TotalContributions }
	case FieldLastLoginAt:
		return func(a, b Summary) bool {
			if a.LastLoginAt == nil {
				return b.LastLoginAt != nil
			}
			return b.LastLoginAt != nil && a.LastLoginAt.Before(*b.LastLoginAt)
		}
	default:
		return func(a, b Summary) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
