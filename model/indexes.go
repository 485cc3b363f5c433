package model

import (
	"context"

	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SystemIndexes holds the keys, options and the collection for an index.
type SystemIndexes struct {
	Keys       bson.D
	Options    *options.IndexOptions
	Collection string
}

// GetRequiredIndexes returns the indexes required by the application
// database.
func GetRequiredIndexes() []SystemIndexes {
	return []SystemIndexes{
		{
			Keys:       bson.D{{Key: trajectoryCreatedAtKey, Value: 1}, {Key: trajectoryCompletedAtKey, Value: 1}},
			Collection: trajectoryCollection,
		},
		{
			Keys:       bson.D{{Key: bsonutil.GetDottedKeyName(trajectoryInfoKey, trajectoryInfoScenarioKey), Value: 1}},
			Collection: trajectoryCollection,
		},
		{
			Keys:       bson.D{{Key: bsonutil.GetDottedKeyName(trajectoryInfoKey, trajectoryInfoMethodKey), Value: 1}},
			Collection: trajectoryCollection,
		},
		{
			Keys:       bson.D{{Key: bsonutil.GetDottedKeyName(trajectoryInfoKey, trajectoryInfoTagsKey), Value: 1}},
			Collection: trajectoryCollection,
		},
		{
			Keys:       bson.D{{Key: bsonutil.GetDottedKeyName(datasetInfoKey, datasetInfoScenarioKey), Value: 1}},
			Collection: datasetCollection,
		},
		{
			Keys:       bson.D{{Key: datasetStateKey, Value: 1}, {Key: datasetCreatedAtKey, Value: -1}},
			Collection: datasetCollection,
		},
	}
}

// ConfigureIndexes creates the required indexes, tolerating indexes that
// already exist.
func ConfigureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, index := range GetRequiredIndexes() {
		model := mongo.IndexModel{Keys: index.Keys, Options: index.Options}
		if _, err := db.Collection(index.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return errors.Wrapf(err, "problem creating index on collection %s", index.Collection)
		}
	}

	return nil
}
