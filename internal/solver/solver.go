// Package solver turns observation batches into provably safe clicks,
// provable mine flags and, when nothing is certain, a lowest-risk
// guess. All deduction runs against a single snapshot of the grid
// store per cycle; the store is committed exactly once at cycle end.
package solver

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

// Log is the package logger. Binaries and tests configure it.
var Log = logrus.New()

// ErrUnsatisfiable reports that some constraints admit no mine
// assignment at all: the observations contradict each other (a misread
// symbol upstream, usually). Guessing on contradictory data is worse
// than stopping, so this propagates out of the cycle.
var ErrUnsatisfiable = errors.New("observations admit no consistent mine assignment")

// Options are the solver tunables.
type Options struct {
	// MaxComponentVars bounds the exact search: components with more
	// unknowns are deferred, not failed, until reduction or new
	// observations shrink them.
	MaxComponentVars int `json:"max_component_vars"`

	// Guess enables the probabilistic fallback when a cycle produces
	// no certain action.
	Guess bool `json:"guess"`

	// TotalMines is the global mine budget, or -1 when unknown
	// (unbounded boards). Used only to weight guess probabilities.
	TotalMines int `json:"total_mines"`

	// MineDensity weights guess probabilities when the budget is
	// unknown.
	MineDensity float64 `json:"mine_density"`
}

func DefaultOptions() Options {
	return Options{
		MaxComponentVars: 22,
		Guess:            true,
		TotalMines:       -1,
		MineDensity:      0.20,
	}
}

// ActionKind tags an emitted action. Consumers execute mine as a flag
// and safe/guess as a reveal.
type ActionKind uint8

const (
	ActionSafe ActionKind = iota
	ActionMine
	ActionGuess
)

func (k ActionKind) String() string {
	switch k {
	case ActionMine:
		return "mine"
	case ActionGuess:
		return "guess"
	default:
		return "safe"
	}
}

// MarshalJSON encodes the kind as its name; the action list is part of
// the debug export surface.
func (k ActionKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Action is one entry of the ordered per-cycle action list.
type Action struct {
	At   grid.Point `json:"at"`
	Kind ActionKind `json:"kind"`
}

func (a Action) String() string {
	return fmt.Sprintf("%s (%d,%d)", a.Kind, a.At.X, a.At.Y)
}

// Solver owns a grid store and runs solve cycles against it. The
// caller must serialize cycles; the solver has no internal locking.
type Solver struct {
	store *grid.Store
	opts  Options
}

func New(store *grid.Store, opts Options) *Solver {
	if opts.MaxComponentVars <= 0 {
		opts.MaxComponentVars = DefaultOptions().MaxComponentVars
	}
	if opts.MineDensity <= 0 || opts.MineDensity >= 1 {
		opts.MineDensity = DefaultOptions().MineDensity
	}
	return &Solver{store: store, opts: opts}
}

// Store exposes the underlying store for read-only queries between
// cycles.
func (s *Solver) Store() *grid.Store { return s.store }

// Cycle ingests one observation batch, runs the full pipeline
// (classify, reduce, component search, optional guess) on a snapshot
// and commits the result. An empty action list with a nil error is a
// valid outcome; the caller decides what to do with an idle cycle.
func (s *Solver) Cycle(batch grid.Observations) ([]Action, error) {
	snap := s.store.Snapshot()

	observed, err := snap.Ingest(batch)
	if err != nil {
		return nil, err
	}

	cy := &cycle{snap: snap, opts: s.opts}

	if err := cy.classify(observed); err != nil {
		return nil, err
	}
	if err := cy.reduce(); err != nil {
		return nil, err
	}
	cy.refreshZones()
	if err := cy.solveComponents(); err != nil {
		return nil, err
	}
	if len(cy.actions) == 0 && s.opts.Guess {
		cy.guess()
	}

	if err := s.store.Commit(snap); err != nil {
		return nil, err
	}
	return cy.actions, nil
}
