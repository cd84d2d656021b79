package member

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"somiti-server/internal/domain/transaction"
	"somiti-server/internal/identity"
	"somiti-server/internal/identity/memory"
)

type fakeMemberRepo struct {
	items []*Member
}

func (r *fakeMemberRepo) Create(ctx context.Context, m *Member) error {
	for _, existing := range r.items {
		if existing.Email == m.Email {
			return &EmailTakenError{Existing: existing}
		}
	}
	copied := *m
	r.items = append(r.items, &copied)
	return nil
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id string) (*Member, error) {
	for _, m := range r.items {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *fakeMemberRepo) GetByEmail(ctx context.Context, email string) (*Member, error) {
	for _, m := range r.items {
		if m.Email == email {
			copied := *m
			return &copied, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *fakeMemberRepo) List(ctx context.Context, criteria []Criterion) ([]Member, error) {
	result := make([]Member, 0, len(r.items))
	for _, m := range r.items {
		if matchesAll(*m, criteria) {
			result = append(result, *m)
		}
	}
	return result, nil
}

func matchesAll(m Member, criteria []Criterion) bool {
	for _, c := range criteria {
		switch c := c.(type) {
		case ExactMatch:
			switch c.Field {
			case FieldRole:
				if m.Role != c.Value {
					return false
				}
			case FieldIsActive:
				if m.IsActive != c.Value {
					return false
				}
			}
		case TextSearch:
			term := strings.ToLower(c.Term)
			if !strings.Contains(strings.ToLower(m.Name), term) && !strings.Contains(strings.ToLower(m.Email), term) {
				return false
			}
		}
	}
	return true
}

func (r *fakeMemberRepo) UpdateByID(ctx context.Context, id string, changes Changes) (UpdateResult, error) {
	for _, m := range r.items {
		if m.ID == id {
			applyChanges(m, changes)
			return UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return UpdateResult{}, nil
}

func (r *fakeMemberRepo) UpdateByEmail(ctx context.Context, email string, changes Changes) (UpdateResult, error) {
	for _, m := range r.items {
		if m.Email == email {
			applyChanges(m, changes)
			return UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return UpdateResult{}, nil
}

func applyChanges(m *Member, c Changes) {
	if c.Role != nil {
		m.Role = *c.Role
	}
	if c.IsActive != nil {
		m.IsActive = *c.IsActive
	}
	if c.Name != nil {
		m.Name = *c.Name
	}
	if c.PhoneNumber != nil {
		m.PhoneNumber = *c.PhoneNumber
	}
	if c.Photo != nil {
		m.Photo = *c.Photo
	}
	if c.LastLoginAt != nil {
		m.LastLoginAt = c.LastLoginAt
	}
}

func (r *fakeMemberRepo) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	for i, m := range r.items {
		if m.Email == email {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeTransactions struct {
	items []transaction.Transaction
}

func (f *fakeTransactions) List(ctx context.Context, filter transaction.ListFilter) ([]transaction.Transaction, error) {
	return f.items, nil
}

func (f *fakeTransactions) ListByMember(ctx context.Context, ref transaction.MemberRef) ([]transaction.Transaction, error) {
	var result []transaction.Transaction
	for _, tx := range f.items {
		if (ref.ID != "" && tx.MemberID == ref.ID) || (ref.Email != "" && tx.MemberEmail == ref.Email) {
			result = append(result, tx)
		}
	}
	return result, nil
}

type failingProvider struct {
	identity.Provider
	err error
}

func (p failingProvider) GetAccountByEmail(ctx context.Context, email string) (*identity.Account, error) {
	return nil, p.err
}

func newTestService(repo *fakeMemberRepo, txs *fakeTransactions, provider identity.Provider) *Service {
	if txs == nil {
		txs = &fakeTransactions{}
	}
	if provider == nil {
		provider = memory.New()
	}
	svc := NewService(repo, txs, provider, bcrypt.MinCost)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestRegisterCreatesSelfUser(t *testing.T) {
	repo := &fakeMemberRepo{}
	svc := newTestService(repo, nil, nil)

	m, created, err := svc.Register(context.Background(), RegisterInput{Email: "rina@example.com", Name: " Rina "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected created")
	}
	if m.Role != RoleUser || m.CreatedBy != CreatedBySelf || !m.IsActive {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if m.Name != "Rina" {
		t.Fatalf("expected trimmed name, got %q", m.Name)
	}
	if !ValidID(m.ID) {
		t.Fatalf("expected uuid id, got %q", m.ID)
	}
}

func TestRegisterRole(t *testing.T) {
	repo := &fakeMemberRepo{}
	svc := newTestService(repo, nil, nil)

	m, _, err := svc.Register(context.Background(), RegisterInput{Email: "admin@example.com", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Role != RoleAdmin {
		t.Fatalf("expected supplied role, got %s", m.Role)
	}

	if _, _, err := svc.Register(context.Background(), RegisterInput{Email: "x@example.com", Role: "owner"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected invalid role not stored, got %d members", len(repo.items))
	}
}

func TestRegisterExistingEmailReturnsStoredRecord(t *testing.T) {
	repo := &fakeMemberRepo{}
	svc := newTestService(repo, nil, nil)

	first, _, err := svc.Register(context.Background(), RegisterInput{Email: "rina@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, created, err := svc.Register(context.Background(), RegisterInput{Email: "rina@example.com", Name: "Other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for existing email")
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing record %s, got %s", first.ID, second.ID)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected one stored member, got %d", len(repo.items))
	}
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	svc := newTestService(&fakeMemberRepo{}, nil, nil)
	if _, _, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestAssignCreatesIdentityAndHashesPassword(t *testing.T) {
	repo := &fakeMemberRepo{}
	provider := memory.New()
	svc := newTestService(repo, nil, provider)

	m, err := svc.Assign(context.Background(), AssignInput{
		Email:    "karim@example.com",
		Name:     "Karim",
		Password: "secret99",
		Role:     RoleMember,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.UID == "" {
		t.Fatalf("expected uid from identity provider")
	}
	if m.CreatedBy != CreatedByAssigned {
		t.Fatalf("expected createdBy assigned, got %q", m.CreatedBy)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("secret99")); err != nil {
		t.Fatalf("expected bcrypt hash of password: %v", err)
	}

	account, err := provider.GetAccountByEmail(context.Background(), "karim@example.com")
	if err != nil {
		t.Fatalf("expected identity account: %v", err)
	}
	if account.UID != m.UID {
		t.Fatalf("expected uid %s, got %s", account.UID, m.UID)
	}
}

func TestAssignDuplicateEmailCarriesExisting(t *testing.T) {
	repo := &fakeMemberRepo{}
	svc := newTestService(repo, nil, nil)

	existing, _, err := svc.Register(context.Background(), RegisterInput{Email: "karim@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Assign(context.Background(), AssignInput{Email: "karim@example.com", Role: RoleMember})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	var taken *EmailTakenError
	if !errors.As(err, &taken) || taken.Existing.ID != existing.ID {
		t.Fatalf("expected existing record in error, got %v", err)
	}
}

func TestAssignValidation(t *testing.T) {
	svc := newTestService(&fakeMemberRepo{}, nil, nil)

	cases := []struct {
		name  string
		input AssignInput
		want  error
	}{
		{"bad email", AssignInput{Email: "x@y"}, ErrInvalidEmail},
		{"bad role", AssignInput{Email: "a@b.co", Role: "owner"}, ErrInvalidRole},
		{"short password", AssignInput{Email: "a@b.co", Password: "123"}, ErrPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Assign(context.Background(), tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestListComputesContributionAndFilters(t *testing.T) {
	repo := &fakeMemberRepo{items: []*Member{
		{ID: uuid.NewString(), Email: "a@example.com", Name: "Anik", Role: RoleMember, IsActive: true, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.NewString(), Email: "b@example.com", Name: "Bina", Role: RoleMember, IsActive: true, CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.NewString(), Email: "c@example.com", Name: "Chandan", Role: RoleAdmin, IsActive: true, CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
	}}
	txs := &fakeTransactions{items: []transaction.Transaction{
		{MemberEmail: "a@example.com", Type: transaction.TypeDeposit, Amount: 500},
		{MemberEmail: "a@example.com", Type: transaction.TypePenalty, Amount: 50},
		{MemberEmail: "b@example.com", Type: transaction.TypeDeposit, Amount: 200},
		{MemberEmail: "b@example.com", Type: transaction.TypeWithdrawal, Amount: 50},
	}}
	svc := newTestService(repo, txs, nil)

	all, err := svc.List(context.Background(), Query{Sort: Sort{Field: FieldTotalContributions, Descending: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 members, got %d", len(all))
	}
	if all[0].Email != "a@example.com" || all[0].TotalContributions != 500 {
		t.Fatalf("expected a@example.com with 500 first, got %s %v", all[0].Email, all[0].TotalContributions)
	}
	if all[1].TotalContributions != 150 {
		t.Fatalf("expected withdrawal alias subtracted, got %v", all[1].TotalContributions)
	}

	r, err := ParseContributionRange("100-200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filtered, err := svc.List(context.Background(), Query{
		Criteria: []Criterion{ExactMatch{Field: FieldRole, Value: RoleMember}, r},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Email != "b@example.com" {
		t.Fatalf("expected only b@example.com, got %+v", filtered)
	}
}

func TestListDefaultSortNewestFirst(t *testing.T) {
	repo := &fakeMemberRepo{items: []*Member{
		{ID: uuid.NewString(), Email: "old@example.com", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.NewString(), Email: "new@example.com", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := newTestService(repo, nil, nil)

	result, err := svc.List(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result[0].Email != "new@example.com" {
		t.Fatalf("expected newest first, got %s", result[0].Email)
	}
}

func TestProfileByIDOrEmail(t *testing.T) {
	id := uuid.NewString()
	repo := &fakeMemberRepo{items: []*Member{{ID: id, Email: "a@example.com", Name: "Anik"}}}
	txs := &fakeTransactions{items: []transaction.Transaction{
		{MemberID: id, Type: transaction.TypeDeposit, Amount: 10},
		{MemberEmail: "a@example.com", Type: transaction.TypeDeposit, Amount: 20},
		{MemberEmail: "z@example.com", Type: transaction.TypeDeposit, Amount: 30},
	}}
	svc := newTestService(repo, txs, nil)

	byID, err := svc.Profile(context.Background(), id, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byID.Member.Email != "a@example.com" || len(byID.Transactions) != 2 {
		t.Fatalf("expected both transactions of the member by id, got %+v", byID)
	}

	both, err := svc.Profile(context.Background(), id, "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(both.Transactions) != 2 {
		t.Fatalf("expected transactions by id or email, got %d", len(both.Transactions))
	}

	byEmail, err := svc.Profile(context.Background(), "not-a-uuid", "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byEmail.Member.ID != id {
		t.Fatalf("expected lookup by email fallback")
	}
	if len(byEmail.Transactions) != 2 {
		t.Fatalf("expected transactions stored by id to be found by email lookup, got %d", len(byEmail.Transactions))
	}
}

func TestProfileAndUpdateStatusAcceptObjectID(t *testing.T) {
	oid := "665f1c2e9b1e8a3d4c5b6a7f"
	repo := &fakeMemberRepo{items: []*Member{{ID: oid, Email: "a@example.com", Role: RoleUser, IsActive: true}}}
	txs := &fakeTransactions{items: []transaction.Transaction{
		{MemberID: oid, Type: transaction.TypeDeposit, Amount: 10},
	}}
	svc := newTestService(repo, txs, nil)

	profile, err := svc.Profile(context.Background(), oid, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(profile.Transactions))
	}

	result, err := svc.UpdateStatus(context.Background(), oid, StatusInput{Role: RoleMember})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ModifiedCount != 1 || repo.items[0].Role != RoleMember {
		t.Fatalf("expected role update, got %+v", result)
	}

	if _, err := svc.UpdateStatus(context.Background(), "665f1c2e9b1e8a3d4c5b6a7", StatusInput{Role: RoleMember}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for short hex, got %v", err)
	}
}

func TestProfileErrors(t *testing.T) {
	svc := newTestService(&fakeMemberRepo{}, nil, nil)

	if _, err := svc.Profile(context.Background(), "bad", ""); !errors.Is(err, ErrLookupRequired) {
		t.Fatalf("expected ErrLookupRequired, got %v", err)
	}
	if _, err := svc.Profile(context.Background(), uuid.NewString(), ""); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestUpdateStatusOnlyChangedFields(t *testing.T) {
	id := uuid.NewString()
	repo := &fakeMemberRepo{items: []*Member{{ID: id, Email: "a@example.com", Name: "Anik", Role: RoleUser, IsActive: true}}}
	svc := newTestService(repo, nil, nil)

	active := true
	result, err := svc.UpdateStatus(context.Background(), id, StatusInput{Role: RoleUser, IsActive: &active, Name: "Anik"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ModifiedCount != 0 {
		t.Fatalf("expected no modification, got %+v", result)
	}

	result, err = svc.UpdateStatus(context.Background(), id, StatusInput{Role: RoleMember})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ModifiedCount != 1 || repo.items[0].Role != RoleMember {
		t.Fatalf("expected role update, got %+v role=%s", result, repo.items[0].Role)
	}
}

func TestUpdateStatusSyncsIdentity(t *testing.T) {
	id := uuid.NewString()
	provider := memory.New()
	provider.Seed(identity.Account{UID: "uid-1", Email: "a@example.com", DisplayName: "Anik"})
	repo := &fakeMemberRepo{items: []*Member{{ID: id, UID: "uid-1", Email: "a@example.com", Name: "Anik"}}}
	svc := newTestService(repo, nil, provider)

	if _, err := svc.UpdateStatus(context.Background(), id, StatusInput{Name: "Anik Das"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	account, err := provider.GetAccountByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.DisplayName != "Anik Das" {
		t.Fatalf("expected identity display name updated, got %q", account.DisplayName)
	}
}

func TestUpdateStatusIdentityFailureKeepsStoreWrite(t *testing.T) {
	id := uuid.NewString()
	repo := &fakeMemberRepo{items: []*Member{{ID: id, Email: "a@example.com", Name: "Anik"}}}
	svc := newTestService(repo, nil, failingProvider{err: errors.New("upstream down")})

	_, err := svc.UpdateStatus(context.Background(), id, StatusInput{Name: "Renamed"})
	if !errors.Is(err, ErrIdentityFailure) {
		t.Fatalf("expected ErrIdentityFailure, got %v", err)
	}
	if repo.items[0].Name != "Renamed" {
		t.Fatalf("expected store write to remain, got %q", repo.items[0].Name)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	svc := newTestService(&fakeMemberRepo{}, nil, nil)

	if _, err := svc.UpdateStatus(context.Background(), "nope", StatusInput{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), uuid.NewString(), StatusInput{Role: "root"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), uuid.NewString(), StatusInput{}); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestUpdateProfileAndTouchLastLogin(t *testing.T) {
	repo := &fakeMemberRepo{items: []*Member{{ID: uuid.NewString(), Email: "a@example.com"}}}
	svc := newTestService(repo, nil, nil)

	if _, err := svc.UpdateProfile(context.Background(), "a@example.com", ProfileInput{PhoneNumber: "01700000000"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.items[0].PhoneNumber != "01700000000" {
		t.Fatalf("expected phone updated, got %q", repo.items[0].PhoneNumber)
	}

	if _, err := svc.UpdateProfile(context.Background(), "missing@example.com", ProfileInput{Name: "X"}); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	at := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	if _, err := svc.TouchLastLogin(context.Background(), "a@example.com", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.items[0].LastLoginAt == nil || !repo.items[0].LastLoginAt.Equal(at) {
		t.Fatalf("expected lastLoginAt %v, got %v", at, repo.items[0].LastLoginAt)
	}
}

func TestDelete(t *testing.T) {
	provider := memory.New()
	provider.Seed(identity.Account{UID: "uid-1", Email: "a@example.com"})
	repo := &fakeMemberRepo{items: []*Member{
		{ID: uuid.NewString(), UID: "uid-1", Email: "a@example.com"},
		{ID: uuid.NewString(), Email: "nouid@example.com"},
	}}
	svc := newTestService(repo, nil, provider)

	if _, err := svc.Delete(context.Background(), "bad-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Delete(context.Background(), "missing@example.com"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if _, err := svc.Delete(context.Background(), "nouid@example.com"); !errors.Is(err, ErrMissingUID) {
		t.Fatalf("expected ErrMissingUID, got %v", err)
	}

	uid, err := svc.Delete(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "uid-1" {
		t.Fatalf("expected uid-1, got %s", uid)
	}
	if _, err := provider.GetAccountByEmail(context.Background(), "a@example.com"); !errors.Is(err, identity.ErrAccountNotFound) {
		t.Fatalf("expected identity account removed, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected member removed, got %d left", len(repo.items))
	}
}
