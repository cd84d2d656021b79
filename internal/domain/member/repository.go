package member

import (
	"context"

	"somiti-server/internal/domain/transaction"
)

type Repository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context, criteria []Criterion) ([]Member, error)
	UpdateByID(ctx context.Context, id string, changes Changes) (UpdateResult, error)
	UpdateByEmail(ctx context.Context, email string, changes Changes) (UpdateResult, error)
	DeleteByEmail(ctx context.Context, email string) (bool, error)
}

type TransactionReader interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]transaction.Transaction, error)
	ListByMember(ctx context.Context, ref transaction.MemberRef) ([]transaction.Transaction, error)
}
