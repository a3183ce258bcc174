package settings

import (
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	collection *mongo.Collection
}

var _ Store = &MongoStore{}

func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

func (m *MongoStore) EnabledProjects(ctx context.Context) ([]ProjectSettings, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"enabled": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to find project settings: %w", err)
	}

	var projects []ProjectSettings
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("unable to decode project settings: %w", err)
	}

	return projects, nil
}
