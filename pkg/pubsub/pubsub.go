package pubsub

import (
	"context"

	"github.com/goccy/go-json"
)

// Topics published by the appearance engine
const (
	TopicRendering = "rendering" // Rendering store diffs
	TopicCaption   = "caption"   // Legends of ranking and partition channels
	TopicStatus    = "status"    // Engine lifecycle
)

// Event types
const (
	EventFull    = "full"    // Complete rendering store
	EventDiff    = "diff"    // Incremental rendering update
	EventCaption = "caption" // Recomputed legend
	EventStatus  = "status"  // Status change
)

// Event is one message on a topic
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // Per-topic sequence number
}

// Subscription receives the events of one topic
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher fans events out to topic subscribers
type Publisher interface {
	// Subscribe registers a subscriber. Cancelling ctx closes the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish encodes data and sends it to every subscriber of topic
	Publish(topic string, eventType string, data any) error

	Close() error
}

// EngineStatus describes what the engine is doing
type EngineStatus struct {
	State   string `json:"state"` // loading, resolving, ready, error
	Message string `json:"message"`
	Pass    int    `json:"pass"` // Number of completed resolution passes
}
