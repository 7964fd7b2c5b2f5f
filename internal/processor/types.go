package processor

import (
	"errors"

	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Processor turns league events into notifications.
type Processor struct {
	standings Standings
	pubsub    pubsub.PubSubClient
	notifier  Notifier
	metrics   metrics.Metrics
}
