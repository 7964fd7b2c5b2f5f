package league

import (
	"fmt"
	"slices"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

func newHistoryID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate history id: %w", err)
	}
	return id, nil
}

// History returns every recorded match, most recent first.
func (e *Engine) History() []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.history)
}

// TeamHistory returns the matches a team took part in, most recent first.
func (e *Engine) TeamHistory(teamID string) []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []HistoryEntry
	for _, h := range e.history {
		if h.Team1.ID == teamID || h.Team2.ID == teamID {
			out = append(out, h)
		}
	}
	return out
}
