// Package store holds the MongoDB repositories behind the HTTP handlers.
package store

import (
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// translate maps driver errors onto the package sentinels and wraps
// everything else with the operation name.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// PostQuery selects posts for the public listing.
type PostQuery struct {
	Keyword   string
	Ascending bool
}

// searchFilter matches keyword as a literal, case-sensitive substring of
// the post content. The keyword is escaped so user input never reaches the
// regex engine as a pattern.
func searchFilter(keyword string) bson.M {
	if keyword == "" {
		return bson.M{}
	}
	return bson.M{"content": primitive.Regex{Pattern: regexp.QuoteMeta(keyword)}}
}

// detailPipeline builds the aggregation that populates a post's owner and,
// when withComments is set, the comments referencing the post.
func detailPipeline(match bson.M, sortDir int, withComments bool) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: sortDir}, {Key: "_id", Value: sortDir}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	project := bson.D{
		{Key: "content", Value: 1},
		{Key: "image", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "likes", Value: 1},
		{Key: "user._id", Value: 1},
		{Key: "user.name", Value: 1},
		{Key: "user.photo", Value: 1},
	}

	if withComments {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "comments"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "post"},
			{Key: "as", Value: "comments"},
		}}})
		project = append(project,
			bson.E{Key: "comments._id", Value: 1},
			bson.E{Key: "comments.post", Value: 1},
			bson.E{Key: "comments.user", Value: 1},
			bson.E{Key: "comments.comment", Value: 1},
			bson.E{Key: "comments.createdAt", Value: 1},
		)
	}

	return append(pipeline, bson.D{{Key: "$project", Value: project}})
}
