// Package notify delivers activity events (new follower, like, comment) to
// the affected user over websocket and Web Push.
package notify

import (
	"context"
	"time"

	"metawall/models"
)

const (
	EventFollow  = "follow"
	EventLike    = "like"
	EventComment = "comment"
)

type Event struct {
	Type      string              `json:"type"`
	Actor     *models.UserSummary `json:"actor"`
	PostID    string              `json:"postId,omitempty"`
	Message   string              `json:"message"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NewEvent builds an event of the given type caused by actor.
func NewEvent(typ string, actor *models.UserSummary, postID string) Event {
	name := "有人"
	if actor != nil && actor.Name != "" {
		name = actor.Name
	}

	var msg string
	switch typ {
	case EventFollow:
		msg = name + " 開始追蹤你"
	case EventLike:
		msg = name + " 說你的貼文讚"
	case EventComment:
		msg = name + " 在你的貼文留言"
	}

	return Event{Type: typ, Actor: actor, PostID: postID, Message: msg, CreatedAt: time.Now()}
}

type Notifier interface {
	Notify(ctx context.Context, userID string, ev Event)
}

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, userID string, ev Event) {
	for _, n := range m {
		n.Notify(ctx, userID, ev)
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, string, Event) {}
