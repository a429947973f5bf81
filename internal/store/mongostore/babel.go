package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b4babl/backend/internal/model/babel"
)

// BabelStore is the Mongo-backed store.BabelStore, one document per response.
type BabelStore struct {
	collection *mongo.Collection
}

// NewBabelStore returns a Babel log over the given database.
func NewBabelStore(client *mongo.Client, database string) *BabelStore {
	return &BabelStore{collection: client.Database(database).Collection("babel_responses")}
}

func (b *BabelStore) Append(ctx context.Context, resp babel.Response) error {
	_, err := b.collection.InsertOne(ctx, resp)
	return err
}

func (b *BabelStore) Recent(ctx context.Context, limit int) ([]babel.Response, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := b.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	responses := []babel.Response{}
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}
