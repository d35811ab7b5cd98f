// Package minefield simulates a finite minesweeper board so the solver
// can be exercised end to end without a browser: it plays the roles of
// both the real board and the perception component.
package minefield

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

// Log is the package logger. Callers configure level and formatter.
var Log = logrus.New()

type Params struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Mines  int `json:"mines"`
}

func (p Params) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Width, p.Height, p.Mines)
}

var ErrBadParams = errors.New("mine count does not fit the board")

// Field is one simulated game.
type Field struct {
	params Params
	mines  []bool
	counts []int8
	open   []bool
	flags  []bool
	opened int

	exploded bool
}

// New lays out a random board. The first click and its whole
// neighborhood are kept clear so every game starts with an opening.
func New(params Params, first grid.Point, r *rand.Rand) (*Field, error) {
	size := params.Width * params.Height
	if params.Mines <= 0 || params.Mines >= size-9 {
		return nil, ErrBadParams
	}
	f := &Field{
		params: params,
		mines:  make([]bool, size),
		counts: make([]int8, size),
		open:   make([]bool, size),
		flags:  make([]bool, size),
	}
	for planted := 0; planted < params.Mines; {
		p := grid.Point{X: r.IntN(params.Width), Y: r.IntN(params.Height)}
		i := f.index(p)
		if f.mines[i] || nearby(p, first) {
			continue
		}
		f.mines[i] = true
		planted++
		for _, n := range p.Neighbors() {
			if f.contains(n) {
				f.counts[f.index(n)]++
			}
		}
	}
	Log.WithFields(logrus.Fields{
		"board": params.String(),
		"first": first,
	}).Debug("board laid out")
	return f, nil
}

func nearby(p, q grid.Point) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

func (f *Field) contains(p grid.Point) bool {
	return p.X >= 0 && p.X < f.params.Width && p.Y >= 0 && p.Y < f.params.Height
}

func (f *Field) index(p grid.Point) int { return p.Y*f.params.Width + p.X }

func (f *Field) Params() Params { return f.params }

// Open reveals a cell, flood-filling through zero counts, and reports
// whether a mine went off.
func (f *Field) Open(p grid.Point) (exploded bool) {
	if !f.contains(p) {
		return false
	}
	i := f.index(p)
	if f.open[i] || f.flags[i] {
		return false
	}
	if f.mines[i] {
		f.open[i] = true
		f.exploded = true
		Log.WithField("at", p).Debug("mine went off")
		return true
	}

	queue := []grid.Point{p}
	f.open[i] = true
	f.opened++
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if f.counts[f.index(cur)] != 0 {
			continue
		}
		for _, n := range cur.Neighbors() {
			if !f.contains(n) {
				continue
			}
			ni := f.index(n)
			if f.open[ni] || f.flags[ni] || f.mines[ni] {
				continue
			}
			f.open[ni] = true
			f.opened++
			queue = append(queue, n)
		}
	}
	return false
}

// Flag plants a flag on a covered cell.
func (f *Field) Flag(p grid.Point) {
	if f.contains(p) {
		if i := f.index(p); !f.open[i] {
			f.flags[i] = true
		}
	}
}

// View renders the visible surface of the inclusive rectangle as an
// observation batch, exactly as a perception pass would read it.
// Coordinates beyond the playable area read as decorative filler, the
// same way the real surface renders its border.
func (f *Field) View(min, max grid.Point) grid.Observations {
	batch := make(grid.Observations)
	for y := min.Y; y <= max.Y; y++ {
		for x := min.X; x <= max.X; x++ {
			p := grid.Point{X: x, Y: y}
			if !f.contains(p) {
				batch[p] = grid.SymbolDecorative
				continue
			}
			batch[p] = f.symbolAt(p)
		}
	}
	return batch
}

func (f *Field) symbolAt(p grid.Point) grid.Symbol {
	i := f.index(p)
	switch {
	case f.open[i] && f.mines[i]:
		return grid.SymbolExploded
	case f.open[i] && f.counts[i] == 0:
		return grid.SymbolEmpty
	case f.open[i]:
		return grid.Symbol(f.counts[i])
	case f.flags[i]:
		return grid.SymbolFlag
	default:
		return grid.SymbolUnrevealed
	}
}

// Bounds returns the rectangle a full capture covers, inclusive: the
// playable area plus one ring of decorative filler, so edge numbers
// never sit next to unseen coordinates.
func (f *Field) Bounds() (min, max grid.Point) {
	return grid.Point{X: -1, Y: -1}, grid.Point{X: f.params.Width, Y: f.params.Height}
}

// Won reports whether every safe cell is open.
func (f *Field) Won() bool {
	return !f.exploded &&
		f.opened == f.params.Width*f.params.Height-f.params.Mines
}

func (f *Field) Exploded() bool { return f.exploded }

// String draws the visible surface, one rune per cell. Debug helper.
func (f *Field) String() string {
	var b strings.Builder
	for y := 0; y < f.params.Height; y++ {
		for x := 0; x < f.params.Width; x++ {
			fmt.Fprint(&b, f.symbolAt(grid.Point{X: x, Y: y}).String(), " ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
