package grid

import "slices"

// Point addresses one cell on the unbounded board. The grid is sparse:
// a coordinate with no cell record has simply never been looked at.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Compare orders points row-major. Every iteration whose order leaks
// into emitted actions goes through this ordering.
func (p Point) Compare(q Point) int {
	if p.Y != q.Y {
		if p.Y < q.Y {
			return -1
		}
		return 1
	}
	if p.X != q.X {
		if p.X < q.X {
			return -1
		}
		return 1
	}
	return 0
}

// Neighbors returns the 8 surrounding coordinates.
func (p Point) Neighbors() [8]Point {
	return [8]Point{
		{p.X - 1, p.Y - 1}, {p.X, p.Y - 1}, {p.X + 1, p.Y - 1},
		{p.X - 1, p.Y}, {p.X + 1, p.Y},
		{p.X - 1, p.Y + 1}, {p.X, p.Y + 1}, {p.X + 1, p.Y + 1},
	}
}

// Within reports whether p lies inside the inclusive rectangle.
func (p Point) Within(min, max Point) bool {
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}

type void struct{}

type pointSet map[Point]void

func (s pointSet) add(p Point)      { s[p] = void{} }
func (s pointSet) remove(p Point)   { delete(s, p) }
func (s pointSet) has(p Point) bool { _, ok := s[p]; return ok }

func (s pointSet) sorted() []Point {
	points := make([]Point, 0, len(s))
	for p := range s {
		points = append(points, p)
	}
	slices.SortFunc(points, Point.Compare)
	return points
}

// SortPoints sorts a coordinate slice in place, row-major.
func SortPoints(points []Point) {
	slices.SortFunc(points, Point.Compare)
}
