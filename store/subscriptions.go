package store

import (
	"context"
	"time"

	"metawall/database"
	"metawall/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Subscriptions struct {
	coll *mongo.Collection
}

func NewSubscriptions(db *database.DB) *Subscriptions {
	return &Subscriptions{coll: db.Subscriptions}
}

// Save upserts by endpoint: a browser re-subscribing, possibly as another
// user, replaces the previous registration.
func (s *Subscriptions) Save(ctx context.Context, sub *models.PushSubscription) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"endpoint": sub.Endpoint},
		bson.M{
			"$set":         bson.M{"user": sub.User, "keys": sub.Keys},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return translate(err, "save subscription")
}

func (s *Subscriptions) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, errors.Wrap(err, "find subscriptions")
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, errors.Wrap(err, "decode subscriptions")
	}
	return subs, nil
}

func (s *Subscriptions) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"endpoint": endpoint})
	return translate(err, "delete subscription")
}
