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

type Posts struct {
	coll *mongo.Collection
}

func NewPosts(db *database.DB) *Posts {
	return &Posts{coll: db.Posts}
}

func (s *Posts) List(ctx context.Context, q PostQuery) ([]models.PostDetail, error) {
	dir := -1
	if q.Ascending {
		dir = 1
	}
	return s.aggregate(ctx, detailPipeline(searchFilter(q.Keyword), dir, false), "list posts")
}

func (s *Posts) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PostDetail, error) {
	return s.aggregate(ctx, detailPipeline(bson.M{"user": userID}, -1, true), "list user posts")
}

func (s *Posts) LikedBy(ctx context.Context, userID primitive.ObjectID) ([]models.PostDetail, error) {
	match := bson.M{"likes": bson.M{"$in": bson.A{userID}}}
	return s.aggregate(ctx, detailPipeline(match, -1, false), "list liked posts")
}

func (s *Posts) aggregate(ctx context.Context, pipeline mongo.Pipeline, op string) ([]models.PostDetail, error) {
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer cursor.Close(ctx)

	posts := []models.PostDetail{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, errors.Wrapf(err, "%s: decode", op)
	}
	return posts, nil
}

func (s *Posts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "find post")
	}
	return &p, nil
}

func (s *Posts) Create(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}

	_, err := s.coll.InsertOne(ctx, p)
	return translate(err, "insert post")
}

// Like adds userID to the post's like set and returns the updated post.
// added is false when userID was already in the set, in which case nothing
// changed.
func (s *Posts) Like(ctx context.Context, postID, userID primitive.ObjectID) (post *models.Post, added bool, err error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var p models.Post
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, bson.M{"$addToSet": bson.M{"likes": userID}}, opts).Decode(&p)
	if err != nil {
		return nil, false, translate(err, "like post")
	}
	if p.HasLike(userID) {
		return &p, false, nil
	}
	p.Likes = append(p.Likes, userID)
	return &p, true, nil
}

// Unlike removes userID from the like set; unliking a post never liked
// leaves it unchanged.
func (s *Posts) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return s.updateLikes(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}}, "unlike post")
}

func (s *Posts) updateLikes(ctx context.Context, postID primitive.ObjectID, update bson.M, op string) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Post
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&p); err != nil {
		return nil, translate(err, op)
	}
	return &p, nil
}
