package transaction

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	txdomain "somiti-server/internal/domain/transaction"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tx *txdomain.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetByID treats ids that are not UUIDs, such as imported ObjectIds, as
// missing since the id column is typed uuid.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*txdomain.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, txdomain.ErrTransactionNotFound
	}
	var tx txdomain.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, txdomain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter txdomain.ListFilter) ([]txdomain.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&txdomain.Transaction{})
	if filter.MemberID != "" {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.MemberEmail != "" {
		query = query.Where("member_email = ?", filter.MemberEmail)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	// Plain string comparison on the stored date text.
	if filter.Range.Start != "" {
		query = query.Where("date >= ?", filter.Range.Start)
	}
	if filter.Range.End != "" {
		query = query.Where("date <= ?", filter.Range.End)
	}

	var items []txdomain.Transaction
	if err := query.Order("date desc, created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) ListByMember(ctx context.Context, ref txdomain.MemberRef) ([]txdomain.Transaction, error) {
	if ref.ID == "" && ref.Email == "" {
		return nil, txdomain.ErrMemberRequired
	}

	query := r.db.WithContext(ctx).Model(&txdomain.Transaction{})
	switch {
	case ref.ID != "" && ref.Email != "":
		query = query.Where("member_id = ? OR member_email = ?", ref.ID, ref.Email)
	case ref.ID != "":
		query = query.Where("member_id = ?", ref.ID)
	default:
		query = query.Where("member_email = ?", ref.Email)
	}

	var items []txdomain.Transaction
	if err := query.Order("date desc, created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	result := r.db.WithContext(ctx).Delete(&txdomain.Transaction{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
