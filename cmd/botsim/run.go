package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/minefield"
	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/solver"
)

type outcome int

const (
	outcomeWon outcome = iota
	outcomeLost
	outcomeStalled
	outcomeError
)

func (o outcome) String() string {
	switch o {
	case outcomeWon:
		return "won"
	case outcomeLost:
		return "lost"
	case outcomeStalled:
		return "stalled"
	default:
		return "error"
	}
}

// session is one game wired to one solver.
type session struct {
	field *minefield.Field
	brain *solver.Solver
}

func newSession(cfg Config, gameSeed uint64) (*session, error) {
	r := rand.New(rand.NewPCG(cfg.Seed, gameSeed))
	first := grid.Point{X: cfg.Board.Width / 2, Y: cfg.Board.Height / 2}

	field, err := minefield.New(cfg.Board, first, r)
	if err != nil {
		return nil, err
	}
	field.Open(first)

	opts := cfg.Solver
	opts.TotalMines = cfg.Board.Mines

	return &session{
		field: field,
		brain: solver.New(grid.NewStore(), opts),
	}, nil
}

// step runs one observe -> solve -> act round and reports whether the
// game is still going.
func (s *session) step() (actions []solver.Action, done bool, result outcome, err error) {
	min, max := s.field.Bounds()
	actions, err = s.brain.Cycle(s.field.View(min, max))
	if err != nil {
		return nil, true, outcomeError, err
	}
	if len(actions) == 0 {
		return nil, true, outcomeStalled, nil
	}
	for _, a := range actions {
		switch a.Kind {
		case solver.ActionMine:
			s.field.Flag(a.At)
		default:
			if s.field.Open(a.At) {
				if a.Kind == solver.ActionSafe {
					// A certain reveal must never explode; the solver
					// or the simulated perception is broken.
					return actions, true, outcomeError,
						fmt.Errorf("safe action exploded at (%d,%d)", a.At.X, a.At.Y)
				}
				return actions, true, outcomeLost, nil
			}
		}
	}
	if s.field.Won() {
		return actions, true, outcomeWon, nil
	}
	return actions, false, outcomeStalled, nil
}

func (s *session) play(maxCycles int) (outcome, int, error) {
	if maxCycles <= 0 {
		maxCycles = 10 * s.field.Params().Width * s.field.Params().Height
	}
	for cycle := 1; cycle <= maxCycles; cycle++ {
		_, done, result, err := s.step()
		if done {
			return result, cycle, err
		}
	}
	return outcomeStalled, maxCycles, nil
}

func runBatch(ctx context.Context) {
	var (
		tallies [4]atomic.Int64
		cycles  atomic.Int64
		started = time.Now()
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(config.Parallel, 1))

	for i := 0; i < config.Games; i++ {
		gameSeed := uint64(i)
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			s, err := newSession(config, gameSeed)
			if err != nil {
				return err
			}
			result, n, err := s.play(config.MaxCycles)
			if err != nil {
				log.WithFields(logrus.Fields{
					"game":  gameSeed,
					"error": err,
				}).Error("game aborted")
			}
			tallies[result].Add(1)
			cycles.Add(int64(n))
			log.WithFields(logrus.Fields{
				"game":    gameSeed,
				"result":  result.String(),
				"cycles":  n,
				"flagged": len(s.brain.Store().ToVisualize()),
			}).Debug("game finished")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("batch interrupted: ", err)
	}

	total := tallies[outcomeWon].Load() + tallies[outcomeLost].Load() +
		tallies[outcomeStalled].Load() + tallies[outcomeError].Load()
	log.WithFields(logrus.Fields{
		"games":   total,
		"won":     tallies[outcomeWon].Load(),
		"lost":    tallies[outcomeLost].Load(),
		"stalled": tallies[outcomeStalled].Load(),
		"errors":  tallies[outcomeError].Load(),
		"cycles":  cycles.Load(),
		"elapsed": time.Since(started).Round(time.Millisecond).String(),
	}).Info("batch done")
}
