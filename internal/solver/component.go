package solver

import (
	"github.com/sirupsen/logrus"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

// constraint is one active cell's requirement projected onto the
// component's variables.
type constraint struct {
	at       grid.Point
	required int
	vars     []int
}

// zoneInfo is the per-cycle working view of one zone.
type zoneInfo struct {
	id        grid.ZoneID
	members   []grid.Point
	actives   []grid.Point // sound constraint cells only
	needsWork bool
}

// component is a set of zones connected through shared constraints,
// solved together by exhaustive backtracking over boolean
// mine-assignments.
type component struct {
	vars        []grid.Point
	index       map[grid.Point]int
	constraints []constraint
	members     []grid.Point // frontier cells of the member zones
	needsWork   bool

	solutions  [][]bool
	enumerated bool
}

// buildComponents partitions the current frontier zones into
// independent components. The adjacency is computed fresh from the
// snapshot every cycle, never persisted.
func (cy *cycle) buildComponents() []*component {
	byZone := make(map[grid.ZoneID]*zoneInfo)
	var order []grid.ZoneID
	for _, f := range cy.frontierCells() {
		c, _ := cy.snap.Cell(f)
		z, ok := byZone[c.Zone]
		if !ok {
			z = &zoneInfo{id: c.Zone}
			byZone[c.Zone] = z
			order = append(order, c.Zone)
		}
		z.members = append(z.members, f)
		if c.Focus == grid.FocusToProcess {
			z.needsWork = true
		}
	}

	// Collect each zone's sound constraints. An active with an
	// out-of-scope neighbor or a pending guess next to it is excluded:
	// dropping a constraint can only widen the solution set, so
	// certainty stays sound.
	for _, id := range order {
		z := byZone[id]
		seen := make(map[grid.Point]bool)
		for _, f := range z.members {
			for _, n := range f.Neighbors() {
				if seen[n] {
					continue
				}
				nc, ok := cy.snap.Cell(n)
				if !ok || nc.Topo != grid.TopoActive {
					continue
				}
				seen[n] = true
				if _, _, sound := cy.constraintAt(n, nc); sound {
					z.actives = append(z.actives, n)
				}
			}
		}
		grid.SortPoints(z.actives)
	}

	// Zones whose constraints are all unsound stay deferred: nothing
	// can be proven about cells ruled by unobserved neighborhoods.
	zonesByActive := make(map[grid.Point][]grid.ZoneID)
	var solvable []grid.ZoneID
	for _, id := range order {
		z := byZone[id]
		if len(z.actives) == 0 {
			continue
		}
		solvable = append(solvable, id)
		for _, a := range z.actives {
			zonesByActive[a] = append(zonesByActive[a], id)
		}
	}

	// Connected components over zones, linked by shared constraints.
	visited := make(map[grid.ZoneID]bool)
	var comps []*component
	for _, seed := range solvable {
		if visited[seed] {
			continue
		}
		var group []*zoneInfo
		queue := []grid.ZoneID{seed}
		visited[seed] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			z := byZone[id]
			group = append(group, z)
			for _, a := range z.actives {
				for _, other := range zonesByActive[a] {
					if !visited[other] {
						visited[other] = true
						queue = append(queue, other)
					}
				}
			}
		}
		comps = append(comps, cy.assembleComponent(group))
	}
	return comps
}

func (cy *cycle) assembleComponent(group []*zoneInfo) *component {
	comp := &component{index: make(map[grid.Point]int)}

	activeSet := make(map[grid.Point]bool)
	for _, z := range group {
		comp.members = append(comp.members, z.members...)
		if z.needsWork {
			comp.needsWork = true
		}
		for _, a := range z.actives {
			activeSet[a] = true
		}
	}
	grid.SortPoints(comp.members)
	comp.vars = comp.members
	for i, v := range comp.vars {
		comp.index[v] = i
	}

	actives := make([]grid.Point, 0, len(activeSet))
	for a := range activeSet {
		actives = append(actives, a)
	}
	grid.SortPoints(actives)
	for _, a := range actives {
		ac, _ := cy.snap.Cell(a)
		required, unknown, _ := cy.constraintAt(a, ac)
		cons := constraint{at: a, required: required}
		for _, u := range unknown {
			if i, ok := comp.index[u]; ok {
				cons.vars = append(cons.vars, i)
			}
		}
		comp.constraints = append(comp.constraints, cons)
	}
	return comp
}

// solveComponents runs bounded exact search on every component that
// still needs work. Oversized components are deferred, never failed;
// contradictory ones abort the cycle.
func (cy *cycle) solveComponents() error {
	cy.components = cy.buildComponents()

	for _, comp := range cy.components {
		if len(comp.vars) > cy.opts.MaxComponentVars {
			Log.WithFields(logrus.Fields{
				"vars":  len(comp.vars),
				"bound": cy.opts.MaxComponentVars,
				"near":  comp.vars[0],
			}).Debug("deferring oversized component")
			continue
		}
		if !comp.needsWork {
			continue
		}

		comp.enumerate()
		if len(comp.solutions) == 0 {
			return unsatisfiableAt(comp.vars[0], "component of %d cells has no solution",
				len(comp.vars))
		}

		for i, v := range comp.vars {
			mined := 0
			for _, sol := range comp.solutions {
				if sol[i] {
					mined++
				}
			}
			switch mined {
			case len(comp.solutions):
				if err := cy.decide(v, true); err != nil {
					return err
				}
			case 0:
				if err := cy.decide(v, false); err != nil {
					return err
				}
			}
		}

		// Search is exhaustive: whatever was not forced cannot be
		// forced until the component itself changes.
		for _, f := range comp.members {
			c, ok := cy.snap.Cell(f)
			if ok && c.Topo == grid.TopoFrontier {
				c.Focus = grid.FocusProcessed
				cy.snap.Put(f, c)
			}
		}
	}
	return nil
}

// enumerate backtracks over mine/safe assignments, pruning a branch as
// soon as any constraint would be forced past its required count or
// could no longer reach it.
func (comp *component) enumerate() {
	if comp.enumerated {
		return
	}
	comp.enumerated = true

	varCons := make([][]int, len(comp.vars))
	mines := make([]int, len(comp.constraints))
	remaining := make([]int, len(comp.constraints))
	for ci, cons := range comp.constraints {
		remaining[ci] = len(cons.vars)
		for _, vi := range cons.vars {
			varCons[vi] = append(varCons[vi], ci)
		}
	}

	assign := make([]bool, len(comp.vars))
	var rec func(i int)
	rec = func(i int) {
		if i == len(comp.vars) {
			sol := make([]bool, len(assign))
			copy(sol, assign)
			comp.solutions = append(comp.solutions, sol)
			return
		}
		for _, mine := range [2]bool{true, false} {
			assign[i] = mine
			ok := true
			for _, ci := range varCons[i] {
				if mine {
					mines[ci]++
				}
				remaining[ci]--
				if mines[ci] > comp.constraints[ci].required ||
					mines[ci]+remaining[ci] < comp.constraints[ci].required {
					ok = false
				}
			}
			if ok {
				rec(i + 1)
			}
			for _, ci := range varCons[i] {
				if mine {
					mines[ci]--
				}
				remaining[ci]++
			}
		}
	}
	rec(0)
}
