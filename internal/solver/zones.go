package solver

import (
	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

// frontierCells lists every frontier coordinate visible through the
// snapshot, sorted.
func (cy *cycle) frontierCells() []grid.Point {
	set := make(map[grid.Point]struct{})
	for _, p := range cy.snap.Base().Frontier() {
		set[p] = struct{}{}
	}
	for _, p := range cy.snap.Touched() {
		c, _ := cy.snap.Cell(p)
		if c.Topo == grid.TopoFrontier {
			set[p] = struct{}{}
		} else {
			delete(set, p)
		}
	}
	points := make([]grid.Point, 0, len(set))
	for p := range set {
		points = append(points, p)
	}
	grid.SortPoints(points)
	return points
}

// refreshZones recomputes the constraint signature of every frontier
// cell and re-groups the zones. A signature or membership change marks
// the affected zones to_process; otherwise the stored relevance is
// kept. Finally the to_process mark is spread zone-wide so relevance
// stays one flag per zone.
func (cy *cycle) refreshZones() {
	members := make(map[grid.ZoneID][]grid.Point)
	dirty := make(map[grid.ZoneID]bool)

	for _, f := range cy.frontierCells() {
		c, _ := cy.snap.Cell(f)

		var constraints []grid.Point
		for _, n := range f.Neighbors() {
			if nc, ok := cy.snap.Cell(n); ok && nc.Topo == grid.TopoActive {
				constraints = append(constraints, n)
			}
		}
		grid.SortPoints(constraints)
		id := grid.ZoneSignature(constraints)
		cy.snap.SetZoneConstraints(id, constraints)

		if c.Zone != id {
			dirty[id] = true
			if c.Zone != 0 {
				dirty[c.Zone] = true
			}
			c.Zone = id
			c.Focus = grid.FocusToProcess
			cy.snap.Put(f, c)
		}
		members[id] = append(members[id], f)
	}

	for id, cells := range members {
		process := dirty[id]
		if !process {
			for _, f := range cells {
				c, _ := cy.snap.Cell(f)
				if c.Focus == grid.FocusToProcess {
					process = true
					break
				}
			}
		}
		if !process {
			continue
		}
		for _, f := range cells {
			c, _ := cy.snap.Cell(f)
			if c.Focus != grid.FocusToProcess {
				c.Focus = grid.FocusToProcess
				cy.snap.Put(f, c)
			}
		}
	}
}
