package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoArchive struct {
	coll *mongo.Collection
}

func NewMongo(client *mongo.Client, dbName, collName string) Archive {
	return &mongoArchive{coll: client.Database(dbName).Collection(collName)}
}

// EnsureIndexes creates the rfp/archived_at lookup index.
func EnsureIndexes(ctx context.Context, a Archive) error {
	m, ok := a.(*mongoArchive)
	if !ok {
		return nil
	}
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "rfp_id", Value: 1}, {Key: "archived_at", Value: -1}},
	})
	return err
}

func (a *mongoArchive) Save(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := a.coll.InsertOne(ctx, rec)
	return err
}

func (a *mongoArchive) ListByRFP(ctx context.Context, rfpID string, limit int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "archived_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := a.coll.Find(ctx, bson.M{"rfp_id": rfpID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
