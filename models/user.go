package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Name      string             `bson:"name" json:"name"`
	Gender    string             `bson:"gender" json:"gender"`
	Photo     string             `bson:"photo" json:"photo"`
	Following []FollowEdge       `bson:"following" json:"following"`
	Followers []FollowEdge       `bson:"followers" json:"followers"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// FollowEdge is one side of a follow relation. A user's following list and
// the target's followers list each hold one edge per relation.
type FollowEdge struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserSummary is the public projection attached to posts and follow lists.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
}

type FollowingEntry struct {
	User      *UserSummary `bson:"user" json:"user"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
}

// FollowingView is a user with the following list populated.
type FollowingView struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Following []FollowingEntry   `bson:"following" json:"following"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Photo: u.Photo}
}

func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, e := range u.Following {
		if e.User == id {
			return true
		}
	}
	return false
}
