package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// rowDocument mirrors the relational row: one Mongo document per (collection, id).
type rowDocument struct {
	Key        string      `bson:"_id"`
	Collection string      `bson:"collection"`
	ID         string      `bson:"id"`
	Data       interface{} `bson:"data"`
}

type rawRow struct {
	Data bson.Raw `bson:"data"`
}

// Backend stores records in a single Mongo collection.
type Backend struct {
	client *mongo.Client
	rows   *mongo.Collection
	logger logger.Logger
}

var _ repository.CollectionBackend = (*Backend)(nil)

// Connect dials uri and uses database.table as the row collection.
func Connect(ctx context.Context, uri, database, table string, log logger.Logger) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return NewBackend(client, client.Database(database).Collection(table), log), nil
}

// NewBackend wraps an existing client and row collection.
func NewBackend(client *mongo.Client, rows *mongo.Collection, log logger.Logger) *Backend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Backend{client: client, rows: rows, logger: log.WithComponent("mongodb-backend")}
}

// Database exposes the database so GridFS can share the connection.
func (b *Backend) Database() *mongo.Database {
	return b.rows.Database()
}

func (b *Backend) EnsureSchema(ctx context.Context) error {
	_, err := b.rows.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "collection", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("collection_id"),
	})
	if err != nil {
		return fmt.Errorf("create index on %s: %w", b.rows.Name(), err)
	}
	return nil
}

func (b *Backend) List(ctx context.Context, collection string) ([]model.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetProjection(bson.M{"data": 1})
	cur, err := b.rows.Find(ctx, bson.M{"collection": collection}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	records := make([]model.Record, 0)
	for cur.Next(ctx) {
		var row rawRow
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		rec, err := toRecord(row.Data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, cur.Err()
}

func (b *Backend) Get(ctx context.Context, collection, id string) (model.Record, error) {
	var row rawRow
	err := b.rows.FindOne(ctx, bson.M{"_id": rowKey(collection, id)}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return toRecord(row.Data)
}

func (b *Backend) Put(ctx context.Context, collection, id string, data model.Record) error {
	doc := rowDocument{
		Key:        rowKey(collection, id),
		Collection: collection,
		ID:         id,
		Data:       map[string]interface{}(data),
	}
	_, err := b.rows.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := b.rows.DeleteOne(ctx, bson.M{"_id": rowKey(collection, id)})
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return res.DeletedCount > 0, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}

func (b *Backend) Close() error {
	if err := b.client.Disconnect(context.Background()); err != nil {
		b.logger.Errorf("failed to disconnect MongoDB: %v", err)
		return err
	}
	return nil
}

func rowKey(collection, id string) string {
	return collection + "/" + id
}

// toRecord goes through relaxed extended JSON so nested documents come back as
// plain maps and numbers as float64, the same shapes the SQL backends return.
func toRecord(raw bson.Raw) (model.Record, error) {
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert record: %w", err)
	}
	var rec model.Record
	if err := json.Unmarshal(ext, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
