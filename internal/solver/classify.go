package solver

import (
	"github.com/gammazero/deque"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

// cycle carries the working state of one solve cycle. Every stage
// mutates the snapshot immediately so later stages observe a
// consistent view; nothing touches the store until commit.
type cycle struct {
	snap    *grid.Snapshot
	opts    Options
	actions []Action

	reduceQueue deque.Deque[grid.Point]
	components  []*component
}

// classify promotes just-observed cells into their structural roles
// and propagates wake-up signals to the neighborhoods whose relevance
// must be reconsidered. Only just-observed cells are evaluated;
// already classified cells are never reworked here.
func (cy *cycle) classify(observed []grid.Point) error {
	var queue deque.Deque[grid.Point]
	for _, p := range observed {
		queue.PushBack(p)
	}

	for queue.Len() > 0 {
		p := queue.PopFront()
		c, ok := cy.snap.Cell(p)
		if !ok || c.Topo != grid.TopoJustObserved {
			continue
		}

		switch c.State {
		case grid.StateNumber:
			if err := cy.classifyNumber(p, c); err != nil {
				return err
			}
		case grid.StateEmpty, grid.StateMine:
			c.Topo = grid.TopoSolved
			c.Focus = grid.FocusNone
			c.Zone = 0
			cy.snap.Put(p, c)
			cy.wake(p)
		case grid.StateUnrevealed:
			c.Topo = grid.TopoNone
			c.Focus = grid.FocusNone
			c.Zone = 0
			if cy.hasActiveNeighbor(p) {
				c.Topo = grid.TopoFrontier
				c.Focus = grid.FocusToProcess
			}
			cy.snap.Put(p, c)
		}
	}
	return nil
}

func (cy *cycle) classifyNumber(p grid.Point, c grid.Cell) error {
	unrevealed := 0
	mines := 0
	for _, n := range p.Neighbors() {
		nc, ok := cy.snap.Cell(n)
		if !ok {
			// Adjacent to the observed region but never itself seen:
			// keep a placeholder so the viewport planner knows vision
			// is missing here.
			nc = grid.Cell{
				Symbol: grid.SymbolUnrevealed,
				State:  grid.StateUnrevealed,
				Topo:   grid.TopoOutOfScope,
			}
			cy.snap.Put(n, nc)
		}
		if nc.Unrevealed() {
			unrevealed++
		}
		if nc.State == grid.StateMine {
			mines++
		}
	}

	if unrevealed == 0 {
		if int(c.Number) != mines {
			return unsatisfiableAt(p, "number %d closed with %d mines", c.Number, mines)
		}
		c.Topo = grid.TopoSolved
		c.Focus = grid.FocusNone
		c.Zone = 0
		cy.snap.Put(p, c)
		cy.wake(p)
		return nil
	}

	c.Topo = grid.TopoActive
	c.Focus = grid.FocusToReduce
	c.Zone = 0
	cy.snap.Put(p, c)
	cy.reduceQueue.PushBack(p)

	// A dormant unrevealed neighbor joins the frontier the moment a
	// neighbor becomes active. Out-of-scope placeholders stay out: a
	// cell never observed cannot be acted on.
	for _, n := range p.Neighbors() {
		nc, _ := cy.snap.Cell(n)
		if nc.Topo == grid.TopoNone && nc.Unrevealed() {
			nc.Topo = grid.TopoFrontier
			nc.Focus = grid.FocusToProcess
			cy.snap.Put(n, nc)
		}
	}
	cy.wake(p)
	return nil
}

// wake implements the sole re-activation mechanism: when p's topology
// changes to active, solved or to_visualize, adjacent actives must be
// re-reduced and the zones of adjacent frontier cells re-processed.
// Zone-wide propagation of the to_process mark happens in
// refreshZones and again at commit.
func (cy *cycle) wake(p grid.Point) {
	for _, n := range p.Neighbors() {
		nc, ok := cy.snap.Cell(n)
		if !ok {
			continue
		}
		switch nc.Topo {
		case grid.TopoActive:
			if nc.Focus != grid.FocusToReduce {
				nc.Focus = grid.FocusToReduce
				cy.snap.Put(n, nc)
			}
			cy.reduceQueue.PushBack(n)
			// The constraint at n changed, so every zone constrained
			// by n needs re-processing; all their members touch n.
			cy.markFrontierAround(n)
		case grid.TopoFrontier:
			if nc.Focus != grid.FocusToProcess {
				nc.Focus = grid.FocusToProcess
				cy.snap.Put(n, nc)
			}
		}
	}
}

func (cy *cycle) markFrontierAround(p grid.Point) {
	for _, n := range p.Neighbors() {
		nc, ok := cy.snap.Cell(n)
		if ok && nc.Topo == grid.TopoFrontier && nc.Focus != grid.FocusToProcess {
			nc.Focus = grid.FocusToProcess
			cy.snap.Put(n, nc)
		}
	}
}

func (cy *cycle) hasActiveNeighbor(p grid.Point) bool {
	for _, n := range p.Neighbors() {
		if nc, ok := cy.snap.Cell(n); ok && nc.Topo == grid.TopoActive {
			return true
		}
	}
	return false
}
