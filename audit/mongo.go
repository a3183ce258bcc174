package audit

import (
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoSink struct {
	collection *mongo.Collection
}

var _ Sink = &MongoSink{}

func NewMongoSink(collection *mongo.Collection) *MongoSink {
	return &MongoSink{collection: collection}
}

func (m *MongoSink) Record(ctx context.Context, entry Entry) error {
	if _, err := m.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("unable to persist audit entry: %w", err)
	}
	return nil
}
