package league

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
)

// Operation names used for logging and metrics.
const (
	opAddTeam      = "add_team"
	opDeleteTeam   = "delete_team"
	opGamesPlayed  = "update_games_played"
	opAutoSchedule = "auto_schedule"
	opAddMatch     = "add_match"
	opRemoveMatch  = "remove_match"
	opReorder      = "reorder"
	opSelectWinner = "select_winner"
	opPredict      = "predict"
	opNavigate     = "navigate"
	opSetPeriod    = "set_period"
	opFinalize     = "finalize"
	opOpen         = "open"
)

// Store persists the session. Save must write the state and append the new
// history entries atomically.
type Store interface {
	Load(ctx context.Context) (*State, []HistoryEntry, error)
	Save(ctx context.Context, state *State, appended []HistoryEntry) error
	Reset(ctx context.Context) error
}

// Publisher fans events out to interested parties. pubsub.PubSubClient satisfies it.
type Publisher interface {
	SendMessage(topic pubsub.EventType, data any) error
}

// Engine owns the session and serialises every operation on it.
type Engine struct {
	mu        sync.Mutex
	store     Store
	metrics   metrics.Metrics
	publisher Publisher
	opts      Options

	state *State
	// history is kept most recent first.
	history []HistoryEntry
	viewing int

	// outbox holds committed events until they are published outside mu.
	outboxMu sync.Mutex
	outbox   []event
	// publishMu keeps events in commit order across concurrent flushes.
	publishMu sync.Mutex
}

// New creates an engine. Call Open before using it. publisher may be nil.
func New(store Store, metrics metrics.Metrics, publisher Publisher, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Commit == "" {
		opts.Commit = CommitBatch
	}
	if opts.Navigation == "" {
		opts.Navigation = NavigationStrict
	}
	state := NewState()
	return &Engine{
		store:     store,
		metrics:   metrics,
		publisher: publisher,
		opts:      opts,
		state:     state,
		viewing:   state.CurrentPeriod,
	}
}

// Open loads the persisted session. Corrupt or inconsistent data is discarded
// and the store is reset to an empty session.
func (e *Engine) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, history, err := e.store.Load(ctx)
	if err == nil {
		err = state.Validate()
	}
	if err != nil {
		if !errors.Is(err, ErrCorruptState) && !errors.Is(err, ErrIntegrity) {
			return fmt.Errorf("failed to load league state: %w", err)
		}
		log.Error("Discarding unusable league state", "error", err)
		e.metrics.IncRejection(opOpen, Code(err))
		if err := e.store.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset league state: %w", err)
		}
		state, history = NewState(), nil
	}
	state.ensurePeriod(state.CurrentPeriod)
	if e.opts.Policy.TracksGames() {
		state.checkSums()
	}

	e.state = state
	e.history = history
	e.viewing = state.CurrentPeriod
	log.Info("League state loaded", "teams", len(state.Teams), "current_period", state.CurrentPeriod, "history", len(history))
	return nil
}

// change is a pending transition built on a private copy of the state.
type change struct {
	state   *State
	viewing int
	history []HistoryEntry
	// persist is cleared by operations that only move the viewing cursor.
	persist  bool
	events   []event
	onCommit []func()
}

type event struct {
	topic pubsub.EventType
	data  any
}

// mutate runs fn against a copy of the session. The copy replaces the live
// session only after it has been saved; any error leaves everything untouched.
// Events are queued and only go out when the caller runs flush after
// releasing mu.
func (e *Engine) mutate(ctx context.Context, op string, fn func(c *change) error) error {
	e.metrics.IncOperation(op)
	c := &change{
		state:   e.state.Clone(),
		viewing: e.viewing,
		persist: true,
	}
	if err := fn(c); err != nil {
		return e.reject(op, err)
	}
	if c.persist {
		if err := c.state.Validate(); err != nil {
			return e.reject(op, err)
		}
		if err := e.store.Save(ctx, c.state, c.history); err != nil {
			return e.reject(op, fmt.Errorf("failed to save league state: %w", err))
		}
	}

	e.state = c.state
	e.viewing = c.viewing
	for _, h := range c.history {
		e.history = append([]HistoryEntry{h}, e.history...)
	}
	for _, f := range c.onCommit {
		f()
	}
	if len(c.events) > 0 {
		e.outboxMu.Lock()
		e.outbox = append(e.outbox, c.events...)
		e.outboxMu.Unlock()
	}
	log.Debug("League operation committed", "op", op, "persisted", c.persist, "history_appended", len(c.history))
	return nil
}

func (e *Engine) reject(op string, err error) error {
	code := Code(err)
	e.metrics.IncRejection(op, code)
	if code == "internal" || code == "integrity" {
		log.Error("League operation failed", "op", op, "error", err)
	} else {
		log.Info("League operation rejected", "op", op, "code", code, "error", err)
	}
	return err
}

// flush publishes every queued event. It must not be called with mu held.
func (e *Engine) flush() {
	e.publishMu.Lock()
	defer e.publishMu.Unlock()

	e.outboxMu.Lock()
	pending := e.outbox
	e.outbox = nil
	e.outboxMu.Unlock()

	if e.publisher == nil {
		return
	}
	for _, ev := range pending {
		if err := e.publisher.SendMessage(ev.topic, ev.data); err != nil {
			log.Error("Failed to publish league event", "topic", ev.topic, "error", err)
		}
	}
}

func (e *Engine) today() string {
	return e.opts.Clock().Format(time.DateOnly)
}

// requireWritable rejects changes unless the viewed period is the current,
// open one.
func (c *change) requireWritable() (*Period, error) {
	if c.viewing != c.state.CurrentPeriod {
		return nil, fmt.Errorf("%w: viewing period %d, current period is %d", ErrReadOnlyPeriod, c.viewing, c.state.CurrentPeriod)
	}
	p := c.state.ensurePeriod(c.viewing)
	if p.Completed {
		return nil, fmt.Errorf("%w: period %d was completed on %s", ErrReadOnlyPeriod, p.Index, p.CompletedOn)
	}
	return p, nil
}

// Options returns the configuration the engine was created with.
func (e *Engine) Options() Options {
	return e.opts
}
