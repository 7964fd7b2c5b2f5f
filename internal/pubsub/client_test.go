package pubsub_test

import (
	"errors"
	"testing"

	"github.com/mauv0809/cricket-ladder/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Period int
	Teams  []string
}

func TestInProcess_RoundTrip(t *testing.T) {
	var gotTopic pubsub.EventType
	var gotData []byte
	c := pubsub.NewInProcess(func(topic pubsub.EventType, data []byte) error {
		gotTopic = topic
		gotData = data
		return nil
	})

	err := c.SendMessage(pubsub.EventPeriodFinalized, event{Period: 3, Teams: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, pubsub.EventPeriodFinalized, gotTopic)

	var decoded event
	require.NoError(t, c.ProcessMessage(gotData, &decoded))
	assert.Equal(t, 3, decoded.Period)
	assert.Equal(t, []string{"a", "b"}, decoded.Teams)
}

func TestInProcess_PropagatesDeliveryError(t *testing.T) {
	expectedErr := errors.New("subscriber down")
	c := pubsub.NewInProcess(func(pubsub.EventType, []byte) error { return expectedErr })

	err := c.SendMessage(pubsub.EventMatchApplied, event{})
	assert.ErrorIs(t, err, expectedErr)
}

func TestProcessMessage_RejectsGarbage(t *testing.T) {
	c := pubsub.NewInProcess(func(pubsub.EventType, []byte) error { return nil })
	var decoded event
	assert.Error(t, c.ProcessMessage([]byte{0xc1}, &decoded))
}
