package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// inProcess delivers encoded messages to a local subscriber instead of Google Pub/Sub.
type inProcess struct {
	deliver func(topic EventType, data []byte) error
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventPeriodFinalized EventType = "period-finalized"
	EventMatchApplied    EventType = "match-applied"
)
