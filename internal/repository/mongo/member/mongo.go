package member

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	memberdomain "somiti-server/internal/domain/member"
	"somiti-server/internal/repository/mongo/docid"
)

const collectionName = "users"

var fields = map[string]string{
	memberdomain.FieldName:        "name",
	memberdomain.FieldEmail:       "email",
	memberdomain.FieldRole:        "role",
	memberdomain.FieldPhoneNumber: "phoneNumber",
	memberdomain.FieldIsActive:    "isActive",
	memberdomain.FieldCreatedAt:   "createdAt",
	memberdomain.FieldLastLoginAt: "lastLoginAt",
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongo(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique email index if it is missing.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, m *memberdomain.Member) error {
	_, err := r.coll.InsertOne(ctx, m)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		existing, getErr := r.GetByEmail(ctx, m.Email)
		if getErr != nil {
			return memberdomain.ErrEmailTaken
		}
		return &memberdomain.EmailTakenError{Existing: existing}
	}
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*memberdomain.Member, error) {
	return r.findOne(ctx, docid.Filter(id))
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*memberdomain.Member, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*memberdomain.Member, error) {
	var m memberdomain.Member
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, memberdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoRepository) List(ctx context.Context, criteria []memberdomain.Criterion) ([]memberdomain.Member, error) {
	filter, err := buildFilter(criteria)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	members := make([]memberdomain.Member, 0)
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// buildFilter turns typed criteria into a query document. Contribution
// ranges are skipped; they are applied after contributions are computed.
func buildFilter(criteria []memberdomain.Criterion) (bson.M, error) {
	clauses := make([]bson.M, 0, len(criteria))

	for _, c := range criteria {
		switch c := c.(type) {
		case memberdomain.TextSearch:
			term := strings.TrimSpace(c.Term)
			if term == "" {
				continue
			}
			pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
			alternatives := make(bson.A, 0, len(c.Fields))
			for _, field := range c.Fields {
				key, ok := fields[field]
				if !ok {
					return nil, fmt.Errorf("%w: unknown search field %q", memberdomain.ErrInvalidQuery, field)
				}
				alternatives = append(alternatives, bson.M{key: pattern})
			}
			if len(alternatives) > 0 {
				clauses = append(clauses, bson.M{"$or": alternatives})
			}
		case memberdomain.ExactMatch:
			key, ok := fields[c.Field]
			if !ok {
				return nil, fmt.Errorf("%w: unknown filter field %q", memberdomain.ErrInvalidQuery, c.Field)
			}
			value := c.Value
			if role, ok := value.(memberdomain.Role); ok {
				value = string(role)
			}
			clauses = append(clauses, bson.M{key: value})
		}
	}

	switch len(clauses) {
	case 0:
		return bson.M{}, nil
	case 1:
		return clauses[0], nil
	default:
		and := make(bson.A, 0, len(clauses))
		for _, clause := range clauses {
			and = append(and, clause)
		}
		return bson.M{"$and": and}, nil
	}
}

func (r *MongoRepository) UpdateByID(ctx context.Context, id string, changes memberdomain.Changes) (memberdomain.UpdateResult, error) {
	return r.update(ctx, docid.Filter(id), changes)
}

func (r *MongoRepository) UpdateByEmail(ctx context.Context, email string, changes memberdomain.Changes) (memberdomain.UpdateResult, error) {
	return r.update(ctx, bson.M{"email": email}, changes)
}

func (r *MongoRepository) update(ctx context.Context, filter bson.M, changes memberdomain.Changes) (memberdomain.UpdateResult, error) {
	set := setDocument(changes)
	if len(set) == 0 {
		return memberdomain.UpdateResult{}, nil
	}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return memberdomain.UpdateResult{}, err
	}
	return memberdomain.UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

func setDocument(c memberdomain.Changes) bson.M {
	set := bson.M{}
	if c.Role != nil {
		set["role"] = string(*c.Role)
	}
	if c.IsActive != nil {
		set["isActive"] = *c.IsActive
	}
	if c.Name != nil {
		set["name"] = *c.Name
	}
	if c.PhoneNumber != nil {
		set["phoneNumber"] = *c.PhoneNumber
	}
	if c.Photo != nil {
		set["photo"] = *c.Photo
	}
	if c.LastLoginAt != nil {
		set["lastLoginAt"] = *c.LastLoginAt
	}
	return set
}

func (r *MongoRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
