package store

import (
	"context"
	"time"

	"metawall/database"
	"metawall/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Comments struct {
	coll *mongo.Collection
}

func NewComments(db *database.DB) *Comments {
	return &Comments{coll: db.Comments}
}

func (s *Comments) Create(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := s.coll.InsertOne(ctx, c)
	return translate(err, "insert comment")
}
