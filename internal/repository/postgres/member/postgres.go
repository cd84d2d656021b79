package member

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	memberdomain "somiti-server/internal/domain/member"
)

var columns = map[string]string{
	memberdomain.FieldName:        "name",
	memberdomain.FieldEmail:       "email",
	memberdomain.FieldRole:        "role",
	memberdomain.FieldPhoneNumber: "phone_number",
	memberdomain.FieldIsActive:    "is_active",
	memberdomain.FieldCreatedAt:   "created_at",
	memberdomain.FieldLastLoginAt: "last_login_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *memberdomain.Member) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if err == nil {
		return nil
	}
	// Not every driver translates unique violations, so check for the owner.
	if existing, getErr := r.GetByEmail(ctx, m.Email); getErr == nil {
		return &memberdomain.EmailTakenError{Existing: existing}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return memberdomain.ErrEmailTaken
	}
	return err
}

// GetByID treats ids that are not UUIDs, such as imported ObjectIds, as
// missing since the id column is typed uuid.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*memberdomain.Member, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, memberdomain.ErrMemberNotFound
	}
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*memberdomain.Member, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresRepository) first(ctx context.Context, query string, arg string) (*memberdomain.Member, error) {
	var m memberdomain.Member
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, memberdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) List(ctx context.Context, criteria []memberdomain.Criterion) ([]memberdomain.Member, error) {
	query := r.db.WithContext(ctx).Model(&memberdomain.Member{})

	for _, c := range criteria {
		switch c := c.(type) {
		case memberdomain.TextSearch:
			term := strings.TrimSpace(c.Term)
			if term == "" {
				continue
			}
			pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
			clauses := make([]string, 0, len(c.Fields))
			args := make([]interface{}, 0, len(c.Fields))
			for _, field := range c.Fields {
				column, ok := columns[field]
				if !ok {
					return nil, fmt.Errorf("%w: unknown search field %q", memberdomain.ErrInvalidQuery, field)
				}
				clauses = append(clauses, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column))
				args = append(args, pattern)
			}
			if len(clauses) > 0 {
				query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
			}
		case memberdomain.ExactMatch:
			column, ok := columns[c.Field]
			if !ok {
				return nil, fmt.Errorf("%w: unknown filter field %q", memberdomain.ErrInvalidQuery, c.Field)
			}
			value := c.Value
			if role, ok := value.(memberdomain.Role); ok {
				value = string(role)
			}
			query = query.Where(column+" = ?", value)
		case memberdomain.ContributionRange:
			// Evaluated by the service after contributions are computed.
		}
	}

	var members []memberdomain.Member
	if err := query.Order("created_at asc, id asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, changes memberdomain.Changes) (memberdomain.UpdateResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return memberdomain.UpdateResult{}, nil
	}
	return r.update(ctx, "id = ?", id, changes)
}

func (r *PostgresRepository) UpdateByEmail(ctx context.Context, email string, changes memberdomain.Changes) (memberdomain.UpdateResult, error) {
	return r.update(ctx, "email = ?", email, changes)
}

func (r *PostgresRepository) update(ctx context.Context, query string, arg string, changes memberdomain.Changes) (memberdomain.UpdateResult, error) {
	updates := changeSet(changes)
	if len(updates) == 0 {
		return memberdomain.UpdateResult{}, nil
	}

	result := r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Where(query, arg).
		Updates(updates)
	if result.Error != nil {
		return memberdomain.UpdateResult{}, result.Error
	}
	return memberdomain.UpdateResult{MatchedCount: result.RowsAffected, ModifiedCount: result.RowsAffected}, nil
}

func changeSet(c memberdomain.Changes) map[string]interface{} {
	updates := make(map[string]interface{})
	if c.Role != nil {
		updates["role"] = string(*c.Role)
	}
	if c.IsActive != nil {
		updates["is_active"] = *c.IsActive
	}
	if c.Name != nil {
		updates["name"] = *c.Name
	}
	if c.PhoneNumber != nil {
		updates["phone_number"] = *c.PhoneNumber
	}
	if c.Photo != nil {
		updates["photo"] = *c.Photo
	}
	if c.LastLoginAt != nil {
		updates["last_login_at"] = *c.LastLoginAt
	}
	return updates
}

func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&memberdomain.Member{}, "email = ?", email)
	return result.RowsAffected > 0, result.Error
}
