package reports

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding report documents.
const Collection = "reports"

// MongoRepository stores reports as nested documents.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the tenant lookup index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "universityId", Value: 1}, {Key: "kind", Value: 1}},
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, rep Report) error {
	_, err := r.coll.InsertOne(ctx, rep)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Report, error) {
	var rep Report
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rep); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}

func (r *MongoRepository) List(ctx context.Context, universityID, kind string) ([]Report, error) {
	filter := bson.M{"universityId": universityID}
	if kind != "" {
		filter["kind"] = kind
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	res := []Report{}
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Update replaces the document. It reports false when no document matched.
func (r *MongoRepository) Update(ctx context.Context, rep Report) (bool, error) {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rep.ID}, rep)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
