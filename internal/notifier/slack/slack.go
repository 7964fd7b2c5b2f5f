package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/notifier"
	"github.com/mauv0809/cricket-ladder/internal/rating"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendPeriodSummary(summary league.PeriodSummary, dryRun bool) error {
	msg := s.formatPeriodSummary(summary)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendMatchResult(entry league.HistoryEntry, dryRun bool) error {
	msg := s.formatMatchResult(entry)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(standings []league.Standing, dryRun bool) error {
	msg := s.formatLeaderboard(standings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(standings []league.Standing) (any, error) {
	return s.formatLeaderboard(standings), nil
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("plain_text", text, true, false)
}

// resultLine renders one applied match, e.g. "Strikers beat Chargers".
func resultLine(h league.HistoryEntry) string {
	loser := h.Team1.Name
	if h.WinnerID == h.Team1.ID {
		loser = h.Team2.Name
	}
	line := fmt.Sprintf("%s beat %s\n> %s %.1f (%+.1f) | %s %.1f (%+.1f)",
		h.WinnerName(), loser,
		h.Team1.Name, rating.Round1(h.Team1After), h.Team1Delta,
		h.Team2.Name, rating.Round1(h.Team2After), h.Team2Delta,
	)
	if h.ExceptionApplied {
		line += "\n> Favourite won by more than 100 points, ratings unchanged."
	}
	return line
}

// formatPeriodSummary creates the Slack message for a finalized period using Block Kit.
func (s *Notifier) formatPeriodSummary(summary league.PeriodSummary) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header - The Header block itself provides bolding. No asterisks needed.
	header := fmt.Sprintf("🏏 Day %d results 🏏", summary.PeriodIndex)
	blocks = append(blocks, slack.NewHeaderBlock(plainText(header)))
	blocks = append(blocks, slack.NewContextBlock("", plainText("Played on "+summary.CompletedOn)))

	if len(summary.Results) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(plainText("No results were recorded."), nil, nil))
	}
	for _, h := range summary.Results {
		blocks = append(blocks, slack.NewSectionBlock(plainText(resultLine(h)), nil, nil))
	}

	if len(summary.Standings) > 0 {
		blocks = append(blocks, slack.NewDividerBlock())
		var lines []string
		for _, st := range summary.Standings {
			lines = append(lines, fmt.Sprintf("%s: %.1f", standingName(st), rating.Round1(st.Team.CurrentPoints)))
		}
		blocks = append(blocks, slack.NewSectionBlock(plainText("Standings:\n"+strings.Join(lines, "\n")), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMatchResult creates the Slack message for a single applied match.
func (s *Notifier) formatMatchResult(entry league.HistoryEntry) slack.Message {
	blocks := make([]slack.Block, 0)
	blocks = append(blocks, slack.NewHeaderBlock(plainText("🏏 Match result 🏏")))
	blocks = append(blocks, slack.NewSectionBlock(plainText(resultLine(entry)), nil, nil))
	blocks = append(blocks, slack.NewContextBlock("", plainText(fmt.Sprintf("Day %d, %s", entry.PeriodIndex, entry.PlayedOn))))
	return slack.NewBlockMessage(blocks...)
}

// standingName renders "1. 🥇 Strikers".
func standingName(st league.Standing) string {
	medal := st.Medal
	if medal != "" {
		medal += " "
	}
	return fmt.Sprintf("%d. %s%s", st.Rank, medal, st.Team.Name)
}

// formatLeaderboard creates a Slack message to display the team leaderboard.
func (s *Notifier) formatLeaderboard(standings []league.Standing) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	blocks = append(blocks, slack.NewHeaderBlock(plainText("🏆 Team Leaderboard 🏆")))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(plainText("No teams registered yet. Add some teams to get started!"), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Team Ranks
	for _, st := range standings {
		teamText := fmt.Sprintf("%s\n> Rating: %.1f | Games: %d", standingName(st), rating.Round1(st.Team.CurrentPoints), st.Team.GamesPlayed)
		blocks = append(blocks, slack.NewSectionBlock(plainText(teamText), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
