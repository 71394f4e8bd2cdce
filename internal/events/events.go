package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event kinds published on the integrity channel.
const (
	KindCascadeCompleted = "cascade.completed"
	KindCascadePartial   = "cascade.partial"
)

// Entity names used in integrity events.
const (
	EntityAccount = "account"
	EntityPost    = "post"
)

// Event describes the outcome of a cascading delete. Completed events are
// an audit trail; partial events additionally carry enough state for a
// consumer to retry the unfinished sweeps.
type Event struct {
	Kind     string `json:"kind"`
	Entity   string `json:"entity"`
	EntityID int    `json:"entity_id"`

	// SweptPosts and SweptComments count the dependent records removed.
	SweptPosts    int64 `json:"swept_posts,omitempty"`
	SweptComments int64 `json:"swept_comments,omitempty"`

	// PhotoKeys are the media objects tied to the deleted entity, kept in
	// the event so a media sweep can be retried.
	PhotoKeys []string `json:"photo_keys,omitempty"`

	// Failed lists the collections whose sweep did not complete. Empty
	// for completed events.
	Failed []string `json:"failed,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a raw message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the bus.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Bus publishes and consumes integrity events on a single named channel.
// A nil *Bus is valid and drops everything; integrity reporting is then
// limited to the error returned to the caller.
type Bus struct {
	backend Backend
	channel string
}

// NewBus constructs a Bus over the provided backend.
func NewBus(backend Backend, channel string) *Bus {
	return &Bus{backend: backend, channel: channel}
}

// Publish emits an integrity event. Stamping OccurredAt is the bus's job so
// callers only describe the outcome.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if b == nil {
		return nil
	}
	ev.OccurredAt = time.Now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = b.backend.Publish(ctx, b.channel, data, map[string]string{
		"kind":   ev.Kind,
		"entity": ev.Entity,
	})
	return err
}

// Subscribe consumes integrity events until ctx is done. Handler errors
// nack the message so the broker redelivers it.
func (b *Bus) Subscribe(ctx context.Context, handler func(ctx context.Context, ev Event) error) error {
	if b == nil {
		return nil
	}
	return b.backend.Subscribe(ctx, b.channel, func(ctx context.Context, msg Message) error {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			// Undecodable messages are dropped, not requeued forever.
			return nil
		}
		return handler(ctx, ev)
	})
}

// Close closes the underlying backend.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	return b.backend.Close()
}
