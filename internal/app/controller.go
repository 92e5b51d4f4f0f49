// Package app owns the live application state: the editable config, the
// current result, the history, and the generation state machine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/akanghida/soalgen/internal/model"
)

// State is the controller's user-visible state.
type State string

const (
	// StateIdle means no result is shown and nothing is in flight.
	StateIdle State = "idle"
	// StateGenerating means a request is in flight and the previous result
	// is hidden.
	StateGenerating State = "generating"
	// StateDisplaying means a result is present and shown.
	StateDisplaying State = "displaying"
)

// ErrGenerationInFlight is returned when a submission arrives while a
// previous generation is still running.
var ErrGenerationInFlight = errors.New("a generation request is already in flight")

// Generator produces an exam result from a config.
type Generator interface {
	Generate(ctx context.Context, cfg model.ExamConfig) (*model.ExamResult, error)
}

// HistoryStore persists the history sequence.
type HistoryStore interface {
	Load() []model.ExamResult
	Save([]model.ExamResult) error
}

// Controller orchestrates generation, history, and persistence. All state
// lives behind one mutex; callers observe atomic transitions.
type Controller struct {
	mu      sync.Mutex
	gen     Generator
	store   HistoryStore
	state   State
	config  model.ExamConfig
	result  *model.ExamResult
	history []model.ExamResult
}

// New creates a controller with the default config and the persisted history.
func New(gen Generator, store HistoryStore) *Controller {
	return &Controller{
		gen:     gen,
		store:   store,
		state:   StateIdle,
		config:  model.DefaultConfig(),
		history: store.Load(),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config returns the live editable configuration.
func (c *Controller) Config() model.ExamConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// SetConfig replaces the live configuration.
func (c *Controller) SetConfig(cfg model.ExamConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
}

// Result returns the currently displayed result, or nil.
func (c *Controller) Result() *model.ExamResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// History returns a copy of the history sequence, newest first.
func (c *Controller) History() []model.ExamResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ExamResult, len(c.history))
	copy(out, c.history)
	return out
}

// Get returns a result by id, checking the current result and the history.
// It does not change any state.
func (c *Controller) Get(id string) (*model.ExamResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil && c.result.ID == id {
		r := *c.result
		return &r, true
	}
	for _, entry := range c.history {
		if entry.ID == id {
			r := entry
			return &r, true
		}
	}
	return nil, false
}

// Generate runs one generation with the current config. The current result
// is cleared before the call so stale content is never shown. On success the
// result is displayed and prepended to history; on failure the controller
// returns to idle and history is left untouched.
func (c *Controller) Generate(ctx context.Context) (*model.ExamResult, error) {
	c.mu.Lock()
	if c.state == StateGenerating {
		c.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	cfg := c.config
	if err := cfg.Validate(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	cfg.ClampTotalQuestions()
	c.config = cfg
	c.state = StateGenerating
	c.result = nil
	c.mu.Unlock()

	result, err := c.gen.Generate(ctx, cfg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdle
		return nil, fmt.Errorf("generate exam: %w", err)
	}

	result.ID = c.uniqueID(result.ID)
	c.result = result
	c.history = append([]model.ExamResult{*result}, c.history...)
	c.state = StateDisplaying
	c.flush()

	return result, nil
}

// uniqueID suffixes a time-derived id until it is unique within history.
func (c *Controller) uniqueID(id string) string {
	exists := func(candidate string) bool {
		for _, entry := range c.history {
			if entry.ID == candidate {
				return true
			}
		}
		return false
	}
	candidate := id
	for n := 1; exists(candidate); n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	return candidate
}

// Select restores a history entry as the displayed result and makes its
// config the live editable configuration.
func (c *Controller) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.history {
		if entry.ID == id {
			r := entry
			c.result = &r
			c.config = entry.Config
			c.state = StateDisplaying
			return true
		}
	}
	return false
}

// Delete removes one entry from history. Deleting the displayed entry
// returns the viewer to idle.
func (c *Controller) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.history[:0]
	removed := false
	for _, entry := range c.history {
		if entry.ID == id && !removed {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	if !removed {
		return
	}
	c.history = kept
	if c.result != nil && c.result.ID == id {
		c.result = nil
		c.state = StateIdle
	}
	c.flush()
}

// Clear removes every history entry and the displayed result.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.result = nil
	c.state = StateIdle
	c.flush()
}

// flush persists the full history. Persistence failures are logged; the
// in-memory state stays authoritative for this process.
func (c *Controller) flush() {
	if err := c.store.Save(c.history); err != nil {
		slog.Error("failed to persist history", "error", err)
	}
}
