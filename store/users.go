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

var withoutPassword = bson.M{"password": 0}

type Users struct {
	db   *database.DB
	coll *mongo.Collection
}

func NewUsers(db *database.DB) *Users {
	return &Users{db: db, coll: db.Users}
}

func (s *Users) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Following == nil {
		u.Following = []models.FollowEdge{}
	}
	if u.Followers == nil {
		u.Followers = []models.FollowEdge{}
	}

	_, err := s.coll.InsertOne(ctx, u)
	return translate(err, "insert user")
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword)).Decode(&u)
	if err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (s *Users) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count user")
	}
	return n > 0, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(withoutPassword)).Decode(&u)
	if err != nil {
		return nil, translate(err, "find user by email")
	}
	return &u, nil
}

// FindByEmailWithPassword is the only read that returns the password hash.
func (s *Users) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err, "find user by email")
	}
	return &u, nil
}

func (s *Users) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, gender, photo string) (*models.User, error) {
	update := bson.M{"$set": bson.M{"name": name, "gender": gender, "photo": photo}}
	return s.findOneAndUpdate(ctx, id, update, "update profile")
}

func (s *Users) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) (*models.User, error) {
	update := bson.M{"$set": bson.M{"password": hash}}
	return s.findOneAndUpdate(ctx, id, update, "update password")
}

func (s *Users) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M, op string) (*models.User, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)

	var u models.User
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		return nil, translate(err, op)
	}
	return &u, nil
}

// Follow records followerID → targetID on both documents. Each write is
// guarded so an existing edge is never duplicated; both run in a single
// transaction when the deployment supports it.
func (s *Users) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	now := time.Now()
	return s.db.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": followerID, "following.user": bson.M{"$ne": targetID}},
			bson.M{"$addToSet": bson.M{"following": models.FollowEdge{User: targetID, CreatedAt: now}}},
		)
		if err != nil {
			return errors.Wrap(err, "add following edge")
		}

		_, err = s.coll.UpdateOne(ctx,
			bson.M{"_id": targetID, "followers.user": bson.M{"$ne": followerID}},
			bson.M{"$addToSet": bson.M{"followers": models.FollowEdge{User: followerID, CreatedAt: now}}},
		)
		return errors.Wrap(err, "add follower edge")
	})
}

func (s *Users) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": followerID},
			bson.M{"$pull": bson.M{"following": bson.M{"user": targetID}}},
		)
		if err != nil {
			return errors.Wrap(err, "pull following edge")
		}

		_, err = s.coll.UpdateOne(ctx,
			bson.M{"_id": targetID},
			bson.M{"$pull": bson.M{"followers": bson.M{"user": followerID}}},
		)
		return errors.Wrap(err, "pull follower edge")
	})
}

// Following returns the user's following list with each followed user's
// name and photo filled in. Edges whose user no longer exists keep a nil
// summary.
func (s *Users) Following(ctx context.Context, id primitive.ObjectID) (*models.FollowingView, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &models.FollowingView{ID: u.ID, Name: u.Name, Following: []models.FollowingEntry{}}
	if len(u.Following) == 0 {
		return view, nil
	}

	ids := make([]primitive.ObjectID, 0, len(u.Following))
	for _, e := range u.Following {
		ids = append(ids, e.User)
	}

	cursor, err := s.coll.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1, "photo": 1}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find followed users")
	}
	defer cursor.Close(ctx)

	var summaries []models.UserSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, errors.Wrap(err, "decode followed users")
	}

	byID := make(map[primitive.ObjectID]*models.UserSummary, len(summaries))
	for i := range summaries {
		byID[summaries[i].ID] = &summaries[i]
	}
	for _, e := range u.Following {
		view.Following = append(view.Following, models.FollowingEntry{User: byID[e.User], CreatedAt: e.CreatedAt})
	}
	return view, nil
}
