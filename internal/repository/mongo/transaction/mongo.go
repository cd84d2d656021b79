package transaction

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	txdomain "somiti-server/internal/domain/transaction"
	"somiti-server/internal/repository/mongo/docid"
)

const collectionName = "transactions"

var newestFirst = bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongo(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName)}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "memberEmail", Value: 1}}},
		{Keys: bson.D{{Key: "memberId", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, tx *txdomain.Transaction) error {
	_, err := r.coll.InsertOne(ctx, tx)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*txdomain.Transaction, error) {
	var tx txdomain.Transaction
	if err := r.coll.FindOne(ctx, docid.Filter(id)).Decode(&tx); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, txdomain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *MongoRepository) List(ctx context.Context, filter txdomain.ListFilter) ([]txdomain.Transaction, error) {
	return r.find(ctx, listFilter(filter))
}

func (r *MongoRepository) ListByMember(ctx context.Context, ref txdomain.MemberRef) ([]txdomain.Transaction, error) {
	filter, err := memberFilter(ref)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, filter)
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]txdomain.Transaction, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}

	items := make([]txdomain.Transaction, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, docid.Filter(id))
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// listFilter compares date bounds as strings, matching the stored text.
func listFilter(filter txdomain.ListFilter) bson.M {
	query := bson.M{}
	if filter.MemberID != "" {
		query["memberId"] = filter.MemberID
	}
	if filter.MemberEmail != "" {
		query["memberEmail"] = filter.MemberEmail
	}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}

	date := bson.M{}
	if filter.Range.Start != "" {
		date["$gte"] = filter.Range.Start
	}
	if filter.Range.End != "" {
		date["$lte"] = filter.Range.End
	}
	if len(date) > 0 {
		query["date"] = date
	}
	return query
}

func memberFilter(ref txdomain.MemberRef) (bson.M, error) {
	switch {
	case ref.ID != "" && ref.Email != "":
		return bson.M{"$or": bson.A{
			bson.M{"memberId": ref.ID},
			bson.M{"memberEmail": ref.Email},
		}}, nil
	case ref.ID != "":
		return bson.M{"memberId": ref.ID}, nil
	case ref.Email != "":
		return bson.M{"memberEmail": ref.Email}, nil
	default:
		return nil, txdomain.ErrMemberRequired
	}
}
