package digest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSender struct {
	mu     sync.Mutex
	calls  int
	dryRun []bool
	err    error
}

func (c *countingSender) SendLeaderboardDigest(dryRun bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.dryRun = append(c.dryRun, dryRun)
	return c.err
}

func (c *countingSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestStart(t *testing.T) {
	t.Run("rejects a non-positive interval", func(t *testing.T) {
		_, err := Start(0, &countingSender{}, true)
		assert.ErrorIs(t, err, ErrInvalidInterval)

		_, err = Start(-time.Second, &countingSender{}, true)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("sends the digest on every tick", func(t *testing.T) {
		sender := &countingSender{}
		sched, err := Start(20*time.Millisecond, sender, true)
		require.NoError(t, err)
		defer sched.Shutdown()

		assert.Eventually(t, func() bool { return sender.count() >= 2 }, 2*time.Second, 10*time.Millisecond)

		sender.mu.Lock()
		defer sender.mu.Unlock()
		for _, dry := range sender.dryRun {
			assert.True(t, dry)
		}
	})

	t.Run("keeps running after a failed send", func(t *testing.T) {
		sender := &countingSender{err: errors.New("slack down")}
		sched, err := Start(20*time.Millisecond, sender, false)
		require.NoError(t, err)
		defer sched.Shutdown()

		assert.Eventually(t, func() bool { return sender.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("registers a single named job", func(t *testing.T) {
		sched, err := Start(time.Hour, &countingSender{}, true)
		require.NoError(t, err)
		defer sched.Shutdown()

		jobs := sched.Jobs()
		require.Len(t, jobs, 1)
		assert.Equal(t, jobName, jobs[0].Name())
	})
}
