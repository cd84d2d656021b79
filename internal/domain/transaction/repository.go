package transaction

import "context"

type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]Transaction, error)
	ListByMember(ctx context.Context, ref MemberRef) ([]Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Publisher receives ledger events after the store write succeeded.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type EventKind string

const (
	EventCreated EventKind = "transaction.created"
	EventDeleted EventKind = "transaction.deleted"
)

type Event struct {
	Kind        EventKind
	Transaction Transaction
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}
