// Package mongorepos implements the domain repositories on a mongo document store.
package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// collections
const (
	tasksCollection    = "tasks"
	journalsCollection = "journals"
	subjectsCollection = "subjects"
	quizzesCollection  = "quiz_results"
	usersCollection    = "users"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the mongo deployment at uri and waits for it to answer.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	store := &Store{client: client, db: client.Database(dbName)}
	if err := store.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx, readpref.Primary()), "pinging mongo")
}

func (s *Store) Close(ctx context.Context) error {
	return errors.Wrap(s.client.Disconnect(ctx), "disconnecting from mongo")
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	nonEmpty := func(field string) *options.IndexOptions {
		return options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{field: bson.M{"$gt": ""}})
	}
	indexes := map[string][]mongo.IndexModel{
		tasksCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "date", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		journalsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		subjectsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		quizzesCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "taken_at", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: nonEmpty("username")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: nonEmpty("email")},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// mongo stores datetimes with millisecond precision
func msUTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func ascending(fields ...string) *options.FindOptions {
	sort := make(bson.D, 0, len(fields))
	for _, f := range fields {
		sort = append(sort, bson.E{Key: f, Value: 1})
	}
	return options.Find().SetSort(sort)
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
