package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Content   string               `bson:"content" json:"content"`
	Image     string               `bson:"image" json:"image"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
}

// HasLike reports whether userID is in the post's like set.
func (p *Post) HasLike(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// PostDetail is a post with its owner populated and, for per-user
// listings, the comments that reference it.
type PostDetail struct {
	ID        primitive.ObjectID   `bson:"_id" json:"_id"`
	Content   string               `bson:"content" json:"content"`
	Image     string               `bson:"image" json:"image"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	User      *UserSummary         `bson:"user,omitempty" json:"user"`
	Comments  []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
}
