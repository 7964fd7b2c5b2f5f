package processor

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
)

// New creates a new Processor.
func New(standings Standings, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		standings: standings,
		pubsub:    pubsub,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// HandleEvent decodes a message published by the league engine and sends the
// matching notification.
func (p *Processor) HandleEvent(topic pubsub.EventType, data []byte, dryRun bool) error {
	log.Info("Handling league event", "topic", topic, "dry_run", dryRun)
	p.metrics.IncOperation("event_" + string(topic))
	switch topic {
	case pubsub.EventPeriodFinalized:
		var summary league.PeriodSummary
		if err := p.pubsub.ProcessMessage(data, &summary); err != nil {
			return fmt.Errorf("failed to decode %s: %w", topic, err)
		}
		return p.PeriodFinalized(summary, dryRun)
	case pubsub.EventMatchApplied:
		var entry league.HistoryEntry
		if err := p.pubsub.ProcessMessage(data, &entry); err != nil {
			return fmt.Errorf("failed to decode %s: %w", topic, err)
		}
		if err := p.notifier.SendMatchResult(entry, dryRun); err != nil {
			log.Error("Failed to send match result", "error", err, "history_id", entry.ID)
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownEvent, topic)
}

// PeriodFinalized announces a closed period.
func (p *Processor) PeriodFinalized(summary league.PeriodSummary, dryRun bool) error {
	log.Info("Announcing finalized period", "period", summary.PeriodIndex, "results", len(summary.Results))
	if err := p.notifier.SendPeriodSummary(summary, dryRun); err != nil {
		log.Error("Failed to send period summary", "error", err, "period", summary.PeriodIndex)
		return err
	}
	return nil
}

// SendLeaderboardDigest posts the current standings.
func (p *Processor) SendLeaderboardDigest(dryRun bool) error {
	standings := p.standings.Leaderboard()
	if len(standings) == 0 {
		log.Info("No teams registered, skipping leaderboard digest")
		return nil
	}
	if err := p.notifier.SendLeaderboard(standings, dryRun); err != nil {
		log.Error("Failed to send leaderboard digest", "error", err)
		return err
	}
	return nil
}
