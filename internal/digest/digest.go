package digest

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

const jobName = "leaderboard-digest"

var ErrInvalidInterval = errors.New("digest interval must be positive")

// Sender posts the current leaderboard. *processor.Processor satisfies it.
type Sender interface {
	SendLeaderboardDigest(dryRun bool) error
}

// Start schedules the leaderboard digest every interval and starts the
// scheduler. The caller owns the returned scheduler and must shut it down.
func Start(interval time.Duration, sender Sender, dryRun bool) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidInterval, interval)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			log.Info("Running leaderboard digest", "dry_run", dryRun)
			if err := sender.SendLeaderboardDigest(dryRun); err != nil {
				log.Error("Leaderboard digest failed", "error", err)
			}
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule %s: %w", jobName, err)
	}

	sched.Start()
	log.Info("Leaderboard digest scheduled", "interval", interval)
	return sched, nil
}
