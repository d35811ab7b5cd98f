package grid

import "github.com/sirupsen/logrus"

// Log is the package logger. Callers configure level and formatter.
var Log = logrus.New()

// Store is the single source of truth for everything the bot knows
// about the board. It never shrinks and is mutated exclusively by
// Commit; the derived sets and the zone index are maintained
// incrementally there, never recomputed from scratch.
type Store struct {
	cells map[Point]Cell

	revealed pointSet
	active   pointSet
	frontier pointSet
	pending  pointSet // to_visualize cells awaiting re-observation

	zones map[ZoneID]*ZoneRecord
}

func NewStore() *Store {
	return &Store{
		cells:    make(map[Point]Cell),
		revealed: make(pointSet),
		active:   make(pointSet),
		frontier: make(pointSet),
		pending:  make(pointSet),
		zones:    make(map[ZoneID]*ZoneRecord),
	}
}

// Cell returns the record at p, if the coordinate was ever addressed.
func (s *Store) Cell(p Point) (Cell, bool) {
	c, ok := s.cells[p]
	return c, ok
}

// Len is the number of cells ever addressed.
func (s *Store) Len() int { return len(s.cells) }

// Revealed returns the coordinates of open (number or empty) cells.
func (s *Store) Revealed() []Point { return s.revealed.sorted() }

// Active returns the revealed numbered cells that still constrain at
// least one unrevealed neighbor.
func (s *Store) Active() []Point { return s.active.sorted() }

// Frontier returns the unrevealed cells adjacent to an active cell.
func (s *Store) Frontier() []Point { return s.frontier.sorted() }

// ToVisualize returns the cells with an issued action awaiting
// re-observation.
func (s *Store) ToVisualize() []Point { return s.pending.sorted() }

// Zone returns the zone record for id.
func (s *Store) Zone(id ZoneID) (*ZoneRecord, bool) {
	z, ok := s.zones[id]
	return z, ok
}

// Zones returns the ids of all live zones.
func (s *Store) Zones() []ZoneID {
	ids := make([]ZoneID, 0, len(s.zones))
	for id := range s.zones {
		ids = append(ids, id)
	}
	return ids
}

// EachCell calls fn for every cell in the store, in no particular
// order.
func (s *Store) EachCell(fn func(Point, Cell)) {
	for p, c := range s.cells {
		fn(p, c)
	}
}

// CellExport is the plain serializable form of one cell, for debug
// overlays and re-capture planning. Not a wire format.
type CellExport struct {
	Point
	Symbol  string `json:"symbol"`
	State   string `json:"state"`
	Number  int8   `json:"number,omitempty"`
	Topo    string `json:"topo"`
	Focus   string `json:"focus,omitempty"`
	Zone    ZoneID `json:"zone,omitempty"`
	Guessed bool   `json:"guessed,omitempty"`
}

// Export snapshots every known cell inside the inclusive rectangle,
// sorted row-major.
func (s *Store) Export(min, max Point) []CellExport {
	var points []Point
	for p := range s.cells {
		if p.Within(min, max) {
			points = append(points, p)
		}
	}
	SortPoints(points)
	out := make([]CellExport, 0, len(points))
	for _, p := range points {
		c := s.cells[p]
		e := CellExport{
			Point:   p,
			Symbol:  c.Symbol.String(),
			State:   c.State.String(),
			Number:  c.Number,
			Topo:    c.Topo.String(),
			Zone:    c.Zone,
			Guessed: c.Guessed,
		}
		if c.Focus != FocusNone {
			e.Focus = c.Focus.String()
		}
		out = append(out, e)
	}
	return out
}

// Commit applies a finished snapshot to the store. This is the only
// place the store, its sets and the zone index ever change. Touched
// cells are validated before anything is written; a validation failure
// leaves the store untouched.
func (s *Store) Commit(snap *Snapshot) error {
	if snap.base != s {
		return invariant(Point{}, "snapshot committed to a foreign store")
	}
	touched := snap.Touched()

	for _, p := range touched {
		c := snap.overlay[p]
		if err := c.Validate(); err != nil {
			return invariant(p, "%s", err.Error())
		}
		if old, ok := s.cells[p]; ok {
			if old.State == StateMine && c.State != StateMine {
				return invariant(p, "confirmed mine re-observed as %s", c.State)
			}
			if old.Topo == TopoSolved && c.Topo != TopoSolved && c.Topo != TopoJustObserved {
				return invariant(p, "solved cell regressed to %s", c.Topo)
			}
		}
	}

	affectedZones := make(map[ZoneID]void)
	for _, p := range touched {
		c := snap.overlay[p]
		old, existed := s.cells[p]
		s.cells[p] = c

		s.updateSet(s.revealed, p, c.State == StateNumber || c.State == StateEmpty)
		s.updateSet(s.active, p, c.Topo == TopoActive)
		s.updateSet(s.frontier, p, c.Topo == TopoFrontier)
		s.updateSet(s.pending, p, c.Topo == TopoToVisualize)

		if existed && old.Zone != 0 && old.Zone != c.Zone {
			s.dropZoneMember(old.Zone, p)
			affectedZones[old.Zone] = void{}
		}
		if c.Zone != 0 {
			s.addZoneMember(c.Zone, p, snap.zoneConstraints[c.Zone])
			affectedZones[c.Zone] = void{}
		}
		for _, n := range p.Neighbors() {
			if nc, ok := s.cells[n]; ok && nc.Zone != 0 {
				affectedZones[nc.Zone] = void{}
			}
		}
	}

	// Relevance is one flag per zone even though it lives on the member
	// cells: spread any to_process mark across the whole zone.
	for id := range affectedZones {
		s.homogenizeZone(id)
	}

	// Structural checks need the whole diff applied first.
	for _, p := range touched {
		if err := s.checkStructure(p); err != nil {
			return err
		}
	}
	snap.committed = true

	Log.WithFields(logrus.Fields{
		"touched": len(touched),
		"zones":   len(affectedZones),
		"cells":   len(s.cells),
	}).Debug("snapshot committed")
	return nil
}

func (s *Store) updateSet(set pointSet, p Point, member bool) {
	if member {
		set.add(p)
	} else {
		set.remove(p)
	}
}

func (s *Store) dropZoneMember(id ZoneID, p Point) {
	z, ok := s.zones[id]
	if !ok {
		return
	}
	z.members.remove(p)
	if len(z.members) == 0 {
		delete(s.zones, id)
	}
}

func (s *Store) addZoneMember(id ZoneID, p Point, constraints []Point) {
	z, ok := s.zones[id]
	if !ok {
		z = &ZoneRecord{ID: id, Constraints: constraints, members: make(pointSet)}
		s.zones[id] = z
	}
	if z.Constraints == nil {
		z.Constraints = constraints
	}
	z.members.add(p)
}

func (s *Store) homogenizeZone(id ZoneID) {
	z, ok := s.zones[id]
	if !ok {
		return
	}
	dirty := false
	for p := range z.members {
		if s.cells[p].Focus == FocusToProcess {
			dirty = true
			break
		}
	}
	if !dirty {
		return
	}
	for p := range z.members {
		c := s.cells[p]
		if c.Focus != FocusToProcess {
			c.Focus = FocusToProcess
			s.cells[p] = c
		}
	}
}

func (s *Store) checkStructure(p Point) error {
	c := s.cells[p]
	switch c.Topo {
	case TopoActive:
		if !s.revealed.has(p) {
			return invariant(p, "active cell is not revealed")
		}
		if !s.hasUnrevealedNeighbor(p) {
			return invariant(p, "active cell has no unrevealed neighbor")
		}
	case TopoFrontier:
		if s.revealed.has(p) {
			return invariant(p, "frontier cell is revealed")
		}
		if !c.Unrevealed() {
			return invariant(p, "frontier cell is not unrevealed")
		}
		if !s.hasActiveNeighbor(p) {
			return invariant(p, "frontier cell has no active neighbor")
		}
	}
	return nil
}

func (s *Store) hasUnrevealedNeighbor(p Point) bool {
	for _, n := range p.Neighbors() {
		if nc, ok := s.cells[n]; ok && nc.Unrevealed() {
			return true
		}
	}
	return false
}

func (s *Store) hasActiveNeighbor(p Point) bool {
	for _, n := range p.Neighbors() {
		if s.active.has(n) {
			return true
		}
	}
	return false
}

// Verify sweeps the whole store and checks every maintained invariant.
// Test support; cycles rely on the incremental checks in Commit.
func (s *Store) Verify() error {
	for p, c := range s.cells {
		if err := c.Validate(); err != nil {
			return invariant(p, "%s", err.Error())
		}
		if s.revealed.has(p) != (c.State == StateNumber || c.State == StateEmpty) {
			return invariant(p, "revealed set out of sync")
		}
		if s.active.has(p) != (c.Topo == TopoActive) {
			return invariant(p, "active set out of sync")
		}
		if s.frontier.has(p) != (c.Topo == TopoFrontier) {
			return invariant(p, "frontier set out of sync")
		}
		if s.pending.has(p) != (c.Topo == TopoToVisualize) {
			return invariant(p, "to_visualize set out of sync")
		}
		if err := s.checkStructure(p); err != nil {
			return err
		}
	}
	for p := range s.active {
		if !s.revealed.has(p) {
			return invariant(p, "active not a subset of revealed")
		}
	}
	for p := range s.frontier {
		if s.revealed.has(p) {
			return invariant(p, "frontier intersects revealed")
		}
	}
	for id, z := range s.zones {
		relevance := FocusNone
		for p := range z.members {
			c, ok := s.cells[p]
			if !ok || c.Topo != TopoFrontier {
				return invariant(p, "zone %d holds a non-frontier member", id)
			}
			if c.Zone != id {
				return invariant(p, "zone index out of sync")
			}
			if relevance == FocusNone {
				relevance = c.Focus
			} else if c.Focus != relevance {
				return invariant(p, "zone %d relevance is not homogeneous", id)
			}
		}
	}
	return nil
}
