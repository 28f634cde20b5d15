package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RecordKind is the logical topic a change event belongs to.
type RecordKind string

const (
	KindLocations RecordKind = "locations"
	KindTrips     RecordKind = "trips"
	KindBookings  RecordKind = "bookings"
)

// ChangeOp describes what happened to a record.
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// ChangeEvent is published whenever a record of some kind changes.
// Delivery is at-least-once with no ordering guarantee; subscribers are
// expected to refetch state rather than apply events incrementally.
type ChangeEvent struct {
	Kind     RecordKind `json:"kind"`
	Op       ChangeOp   `json:"op"`
	RecordID string     `json:"record_id"`
	ActorID  string     `json:"actor_id,omitempty"`
}

const changeChannelPrefix = "changes:"

// Notifier publishes and subscribes to change events over Redis pub/sub.
type Notifier struct {
	client *redis.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// Publish emits a change event for the given record kind. A publish
// with no subscribers is not an error.
func (n *Notifier) Publish(ctx context.Context, event ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.client.Publish(ctx, changeChannelPrefix+string(event.Kind), data).Err()
}

// SubscriptionHandle is the teardown half of a subscription, returned
// by Subscribe and owned by the subscriber.
type SubscriptionHandle interface {
	// Unsubscribe tears the subscription down. Idempotent.
	Unsubscribe()
}

// Subscribe registers handler for all change events of the given kind.
// The handler runs on a dedicated goroutine until Unsubscribe is called.
func (n *Notifier) Subscribe(ctx context.Context, kind RecordKind, handler func(ChangeEvent)) (SubscriptionHandle, error) {
	pubsub := n.client.Subscribe(ctx, changeChannelPrefix+string(kind))

	// Force the subscription onto the wire before returning so a
	// publish after Subscribe cannot be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &Subscription{pubsub: pubsub, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		for msg := range pubsub.Channel() {
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("notifier: dropping malformed change event: %v", err)
				continue
			}
			handler(event)
		}
	}()

	return sub, nil
}

// Subscription is a live registration on a change topic.
type Subscription struct {
	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once
}

// Unsubscribe tears the subscription down. It is synchronous (the
// handler goroutine has exited when it returns), idempotent, and safe
// to call any number of times.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		_ = s.pubsub.Close()
	})
	<-s.done
}
