package grid

import "slices"

// Observations is one perception batch: the raw symbols that were in
// view, keyed by coordinate. Cells absent from the batch are untouched.
type Observations map[Point]Symbol

// Snapshot is the single mutable working copy one solve cycle operates
// on. Reads fall through to the store, writes land in the overlay; the
// overlay is the diff Commit applies. A snapshot is not reusable after
// commit.
type Snapshot struct {
	base    *Store
	overlay map[Point]Cell

	// constraint sets backing the zone ids resolved this cycle, so
	// Commit can materialize new ZoneRecords
	zoneConstraints map[ZoneID][]Point

	committed bool
}

// Snapshot opens a working copy over the store.
func (s *Store) Snapshot() *Snapshot {
	return &Snapshot{
		base:            s,
		overlay:         make(map[Point]Cell),
		zoneConstraints: make(map[ZoneID][]Point),
	}
}

// Base returns the store the snapshot reads through.
func (sn *Snapshot) Base() *Store { return sn.base }

// Cell reads through the overlay, then the store.
func (sn *Snapshot) Cell(p Point) (Cell, bool) {
	if c, ok := sn.overlay[p]; ok {
		return c, true
	}
	return sn.base.Cell(p)
}

// Put stages a new value for p.
func (sn *Snapshot) Put(p Point, c Cell) {
	sn.overlay[p] = c
}

// Touched returns the staged coordinates, sorted.
func (sn *Snapshot) Touched() []Point {
	points := make([]Point, 0, len(sn.overlay))
	for p := range sn.overlay {
		points = append(points, p)
	}
	SortPoints(points)
	return points
}

// SetZoneConstraints records the constraint set behind a zone id
// resolved during this cycle.
func (sn *Snapshot) SetZoneConstraints(id ZoneID, constraints []Point) {
	if _, ok := sn.zoneConstraints[id]; !ok {
		sn.zoneConstraints[id] = constraints
	}
}

// EachCell visits every cell visible through the snapshot (staged
// values win over stored ones). Order is unspecified.
func (sn *Snapshot) EachCell(fn func(Point, Cell)) {
	for p, c := range sn.overlay {
		fn(p, c)
	}
	sn.base.EachCell(func(p Point, c Cell) {
		if _, staged := sn.overlay[p]; !staged {
			fn(p, c)
		}
	})
}

// Ingest applies one observation batch to the snapshot. It returns, in
// deterministic order, the coordinates that now need structural
// reclassification. Cells whose surface did not meaningfully change
// are left alone so already classified regions are not reworked.
func (sn *Snapshot) Ingest(batch Observations) ([]Point, error) {
	points := make([]Point, 0, len(batch))
	for p := range batch {
		points = append(points, p)
	}
	slices.SortFunc(points, Point.Compare)

	var observed []Point
	for _, p := range points {
		sym := batch[p]
		state, number, err := Normalize(sym)
		if err != nil {
			return nil, invariant(p, "%s", err.Error())
		}

		old, known := sn.Cell(p)
		if !known {
			sn.Put(p, Cell{
				Symbol: sym,
				State:  state,
				Number: number,
				Topo:   TopoJustObserved,
			})
			observed = append(observed, p)
			continue
		}

		logicalChange := old.State != state || old.Number != number
		if logicalChange {
			switch {
			case old.State == StateMine && state == StateUnrevealed:
				// A deduced mine still reads as covered until the
				// actuator plants the flag. No information either way.
				continue
			case old.State == StateMine:
				// A confirmed mine cannot stop being one; the perception
				// stream or an earlier deduction is corrupt.
				return nil, invariant(p, "confirmed mine re-observed as %s", state)
			case old.State != StateUnrevealed && state == StateUnrevealed:
				// Revealed surfaces never cover back up.
				return nil, invariant(p, "%s cell re-observed as covered", old.State)
			}
		}

		needsReclassify := logicalChange ||
			old.Topo == TopoToVisualize ||
			old.Topo == TopoOutOfScope
		if !needsReclassify {
			if old.Symbol != sym {
				old.Symbol = sym
				sn.Put(p, old)
			}
			continue
		}

		sn.Put(p, Cell{
			Symbol: sym,
			State:  state,
			Number: number,
			Topo:   TopoJustObserved,
		})
		observed = append(observed, p)
	}
	return observed, nil
}
