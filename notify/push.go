package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"metawall/models"

	"github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type sendFunc func(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// Push sends Web Push notifications to every browser a user registered.
type Push struct {
	subs       SubscriptionStore
	publicKey  string
	privateKey string
	subscriber string
	send       sendFunc
}

func NewPush(subs SubscriptionStore, publicKey, privateKey, subject string) *Push {
	return &Push{
		subs:       subs,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: strings.TrimPrefix(subject, "mailto:"),
		send:       webpush.SendNotification,
	}
}

// Notify sends in the background so request handlers never wait on push
// services.
func (p *Push) Notify(_ context.Context, userID string, ev Event) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic in push notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p.deliver(ctx, userID, ev)
	}()
}

func (p *Push) deliver(ctx context.Context, userID string, ev Event) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return
	}

	subs, err := p.subs.FindByUser(ctx, id)
	if err != nil {
		log.WithError(err).WithField("userId", userID).Error("find push subscriptions")
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"title": "MetaWall",
		"body":  ev.Message,
		"data": map[string]interface{}{
			"type":      ev.Type,
			"postId":    ev.PostID,
			"timestamp": ev.CreatedAt.Unix(),
		},
	})
	if err != nil {
		log.WithError(err).Error("marshal push payload")
		return
	}

	for _, s := range subs {
		sub := &webpush.Subscription{
			Endpoint: s.Endpoint,
			Keys:     webpush.Keys{P256dh: s.Keys.P256dh, Auth: s.Keys.Auth},
		}
		resp, err := p.send(payload, sub, &webpush.Options{
			Subscriber:      p.subscriber,
			VAPIDPublicKey:  p.publicKey,
			VAPIDPrivateKey: p.privateKey,
			TTL:             30,
		})
		if err != nil {
			log.WithError(err).WithField("userId", userID).Warn("send push notification")
			continue
		}
		resp.Body.Close()

		// The push service reports unsubscribed browsers with 404 or 410.
		if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
			if err := p.subs.DeleteByEndpoint(ctx, s.Endpoint); err != nil {
				log.WithError(err).Warn("delete expired push subscription")
			}
		}
	}
}
