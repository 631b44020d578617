package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client        *mongo.Client
	Users         *mongo.Collection
	Posts         *mongo.Collection
	Comments      *mongo.Collection
	Subscriptions *mongo.Collection

	// Transactions is false on standalone servers, where multi-document
	// transactions are rejected by MongoDB.
	Transactions bool
}

// Connect dials MongoDB, pings it and resolves the collections.
func Connect(ctx context.Context, uri, dbName string, transactions bool) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	if transactions {
		transactions = detectTransactions(ctx, client)
	}

	db := client.Database(dbName)
	return &DB{
		Client:        client,
		Users:         db.Collection("users"),
		Posts:         db.Collection("posts"),
		Comments:      db.Collection("comments"),
		Subscriptions: db.Collection("subscriptions"),
		Transactions:  transactions,
	}, nil
}

// detectTransactions asks the server for its topology. Transactions need a
// replica set member or a mongos; on a standalone mongod they are turned off
// so follow and unfollow still work, without atomicity.
func detectTransactions(ctx context.Context, client *mongo.Client) bool {
	var hello bson.M
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		log.WithError(err).Warn("Could not determine MongoDB topology, keeping transactions enabled")
		return true
	}
	if !supportsTransactions(hello) {
		log.Warn("MongoDB is a standalone server, multi-document transactions disabled (set MONGO_TRANSACTIONS=false to silence)")
		return false
	}
	return true
}

func supportsTransactions(hello bson.M) bool {
	if name, ok := hello["setName"].(string); ok && name != "" {
		return true
	}
	msg, _ := hello["msg"].(string)
	return msg == "isdbgrid"
}

// ConnectWithRetry calls Connect up to attempts times, sleeping between tries.
func ConnectWithRetry(ctx context.Context, uri, dbName string, transactions bool, attempts int, wait time.Duration) (*DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := Connect(ctx, uri, dbName, transactions)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.WithError(err).Warnf("MongoDB connection attempt %d failed", i)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// EnsureIndexes creates the indexes the queries rely on. The unique email
// index backs the signup duplicate check against concurrent registrations.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{d.Users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{d.Posts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "likes", Value: 1}}},
		}},
		{d.Comments, []mongo.IndexModel{
			{Keys: bson.D{{Key: "post", Value: 1}}},
		}},
		{d.Subscriptions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user", Value: 1}}},
		}},
	}

	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateMany(ctx, s.models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", s.coll.Name())
		}
	}
	return nil
}

// WithTransaction runs fn inside a multi-document transaction. When
// transactions are disabled fn runs directly against ctx.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.Transactions {
		return fn(ctx)
	}

	session, err := d.Client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (d *DB) Disconnect(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		return errors.Wrap(err, "disconnect mongo")
	}
	log.Info("Disconnected from MongoDB")
	return nil
}
