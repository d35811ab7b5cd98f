package solver

import (
	"fmt"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

func unsatisfiableAt(p grid.Point, format string, args ...any) error {
	return fmt.Errorf("%w: at (%d,%d): %s",
		ErrUnsatisfiable, p.X, p.Y, fmt.Sprintf(format, args...))
}

// reduce is the cheap deterministic pass: unit propagation plus subset
// inference over the active cells marked to_reduce, iterated to a
// fixed point. Decisions are applied to the snapshot immediately so
// later inferences see them.
func (cy *cycle) reduce() error {
	for _, p := range cy.snap.Base().Active() {
		if c, ok := cy.snap.Cell(p); ok &&
			c.Topo == grid.TopoActive && c.Focus == grid.FocusToReduce {
			cy.reduceQueue.PushBack(p)
		}
	}

	for cy.reduceQueue.Len() > 0 {
		p := cy.reduceQueue.PopFront()
		c, ok := cy.snap.Cell(p)
		if !ok || c.Topo != grid.TopoActive || c.Focus != grid.FocusToReduce {
			continue
		}
		if err := cy.reduceCell(p, c); err != nil {
			return err
		}
	}
	return nil
}

// constraintAt summarizes an active cell as "required more mines"
// over its undecided unrevealed neighbors. ok is false while any
// neighbor is out of scope or is a guess still awaiting its outcome:
// a constraint over cells whose real surface was never seen, or whose
// safety was only ever gambled on, is not sound to reduce on. Deduced
// safe cells, by contrast, drop out of the unknowns: their proof holds
// whether or not the actuator got to them yet.
func (cy *cycle) constraintAt(p grid.Point, c grid.Cell) (required int, unknown []grid.Point, ok bool) {
	required = int(c.Number)
	for _, n := range p.Neighbors() {
		nc, known := cy.snap.Cell(n)
		if !known || nc.Topo == grid.TopoOutOfScope || nc.Guessed {
			return 0, nil, false
		}
		switch {
		case nc.State == grid.StateMine:
			required--
		case nc.Topo == grid.TopoFrontier:
			unknown = append(unknown, n)
		}
	}
	grid.SortPoints(unknown)
	return required, unknown, true
}

func (cy *cycle) reduceCell(p grid.Point, c grid.Cell) error {
	required, unknown, sound := cy.constraintAt(p, c)
	if !sound {
		// Vision is missing around p, or a guess is still pending;
		// stay to_reduce and let the planner re-capture the area.
		return nil
	}
	if required < 0 || required > len(unknown) {
		return unsatisfiableAt(p, "number %d cannot place %d mines over %d unknowns",
			c.Number, required, len(unknown))
	}

	if len(unknown) == 0 {
		// Every neighbor is decided; the constraint is spent.
		c.Topo = grid.TopoSolved
		c.Focus = grid.FocusNone
		cy.snap.Put(p, c)
		cy.wake(p)
		return nil
	}

	switch {
	case required == 0:
		return cy.decideAll(unknown, false)
	case required == len(unknown):
		return cy.decideAll(unknown, true)
	}

	progressed, err := cy.subsetInference(p, required, unknown)
	if err != nil {
		return err
	}
	if !progressed {
		c.Focus = grid.FocusReduced
		cy.snap.Put(p, c)
	}
	// On progress the cell stays to_reduce; deciding a neighbor wakes
	// p again through the normal mechanism.
	return nil
}

// subsetInference compares p against every active cell within the 5x5
// extended neighborhood. For nested unknown sets U_p ⊆ U_q, the
// difference is forced entirely one way whenever the required counts
// line up.
func (cy *cycle) subsetInference(p grid.Point, required int, unknown []grid.Point) (bool, error) {
	for _, q := range extendedNeighborhood(p) {
		qc, ok := cy.snap.Cell(q)
		if !ok || qc.Topo != grid.TopoActive {
			continue
		}
		qRequired, qUnknown, sound := cy.constraintAt(q, qc)
		if !sound || len(qUnknown) == 0 {
			continue
		}

		small, big := unknown, qUnknown
		smallReq, bigReq := required, qRequired
		if len(qUnknown) < len(unknown) {
			small, big = qUnknown, unknown
			smallReq, bigReq = qRequired, required
		}
		diff := complement(big, small)
		if len(diff) != len(big)-len(small) {
			continue // small is not nested inside big
		}
		if len(diff) == 0 {
			continue // identical unknown sets
		}

		switch {
		case bigReq-smallReq == len(diff):
			if err := cy.decideAll(diff, true); err != nil {
				return false, err
			}
			return true, nil
		case bigReq == smallReq:
			if err := cy.decideAll(diff, false); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (cy *cycle) decideAll(cells []grid.Point, mine bool) error {
	for _, f := range cells {
		if err := cy.decide(f, mine); err != nil {
			return err
		}
	}
	return nil
}

// decide records a certain deduction for a frontier cell: mines are
// confirmed in place (the actuator flags them), safe cells become
// to_visualize until perception re-reads them. Both transitions wake
// the neighborhood.
func (cy *cycle) decide(f grid.Point, mine bool) error {
	c, ok := cy.snap.Cell(f)
	if !ok {
		return unsatisfiableAt(f, "decision on an unknown cell")
	}
	switch c.Topo {
	case grid.TopoSolved:
		if !mine && c.State == grid.StateMine {
			return unsatisfiableAt(f, "cell deduced both safe and mine")
		}
		return nil
	case grid.TopoToVisualize:
		if mine {
			return unsatisfiableAt(f, "cell deduced both safe and mine")
		}
		return nil
	case grid.TopoFrontier:
		// the only state decisions are made from
	default:
		return unsatisfiableAt(f, "decision on a %s cell", c.Topo)
	}

	c.Focus = grid.FocusNone
	c.Zone = 0
	if mine {
		c.State = grid.StateMine
		c.Topo = grid.TopoSolved
		cy.actions = append(cy.actions, Action{At: f, Kind: ActionMine})
	} else {
		c.Topo = grid.TopoToVisualize
		cy.actions = append(cy.actions, Action{At: f, Kind: ActionSafe})
	}
	cy.snap.Put(f, c)
	cy.wake(f)

	if mine {
		// Confirming a mine can spend an adjacent constraint entirely;
		// close such actives now so the committed state stays closed.
		for _, n := range f.Neighbors() {
			if err := cy.finalizeActive(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cy *cycle) finalizeActive(p grid.Point) error {
	c, ok := cy.snap.Cell(p)
	if !ok || c.Topo != grid.TopoActive {
		return nil
	}
	for _, n := range p.Neighbors() {
		if nc, ok := cy.snap.Cell(n); ok && nc.Unrevealed() {
			return nil
		}
	}
	mines := 0
	for _, n := range p.Neighbors() {
		if nc, ok := cy.snap.Cell(n); ok && nc.State == grid.StateMine {
			mines++
		}
	}
	if int(c.Number) != mines {
		return unsatisfiableAt(p, "number %d closed with %d mines", c.Number, mines)
	}
	c.Topo = grid.TopoSolved
	c.Focus = grid.FocusNone
	cy.snap.Put(p, c)
	cy.wake(p)
	return nil
}

// extendedNeighborhood lists the 24 cells within distance 2,
// row-major.
func extendedNeighborhood(p grid.Point) []grid.Point {
	points := make([]grid.Point, 0, 24)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			points = append(points, grid.Point{X: p.X + dx, Y: p.Y + dy})
		}
	}
	return points
}

// complement returns the members of big absent from small, preserving
// order.
func complement(big, small []grid.Point) []grid.Point {
	seen := make(map[grid.Point]struct{}, len(small))
	for _, p := range small {
		seen[p] = struct{}{}
	}
	var out []grid.Point
	for _, p := range big {
		if _, ok := seen[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}
