package transaction

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"somiti-server/pkg/logger"
)

type Service struct {
	repo      Repository
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher Publisher, log logger.Logger) *Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Transaction, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	tx := Transaction{
		ID:              uuid.NewString(),
		MemberID:        strings.TrimSpace(input.MemberID),
		MemberEmail:     strings.TrimSpace(input.MemberEmail),
		MemberName:      strings.TrimSpace(input.MemberName),
		Type:            input.Type,
		Amount:          input.Amount,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		Date:            strings.TrimSpace(input.Date),
		ApprovedBy:      strings.TrimSpace(input.ApprovedBy),
		ApprovedByEmail: strings.TrimSpace(input.ApprovedByEmail),
		Note:            strings.TrimSpace(input.Note),
		CreatedAt:       s.now().UTC(),
	}

	if err := s.repo.Create(ctx, &tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, Event{Kind: EventCreated, Transaction: tx})
	return &tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, ErrInvalidType
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []Transaction{}, nil
	}
	return items, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !deleted {
		return ErrTransactionNotFound
	}

	s.publish(ctx, Event{Kind: EventDeleted, Transaction: *existing})
	return nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.InternalError("transactions.publish: event not delivered", err, "kind", event.Kind, "transaction_id", event.Transaction.ID)
	}
}

func validateCreateInput(input CreateInput) error {
	if strings.TrimSpace(input.MemberID) == "" && strings.TrimSpace(input.MemberEmail) == "" {
		return ErrMemberRequired
	}
	if !input.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}
	if input.Amount < 0 || math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) {
		return ErrInvalidAmount
	}
	date := strings.TrimSpace(input.Date)
	if len(date) < len(dateLayout) {
		return ErrInvalidDate
	}
	if _, err := time.Parse(dateLayout, date[:len(dateLayout)]); err != nil {
		return ErrInvalidDate
	}
	return nil
}
