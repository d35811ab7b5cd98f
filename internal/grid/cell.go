package grid

import (
	"errors"
	"fmt"
	"strconv"
)

// Symbol is the last surface symbol perception read off the board.
// Values mirror the on-screen tile set; only perception writes these.
type Symbol int8

const (
	SymbolQuestion   Symbol = -3
	SymbolUnrevealed Symbol = -2
	SymbolFlag       Symbol = -1
	SymbolEmpty      Symbol = 0
	// 1-8 for open cells with the given number of mined neighbors
	SymbolDecorative Symbol = 64 // empty filler tile outside playable area
	SymbolExploded   Symbol = 65
)

func (s Symbol) String() string {
	switch s {
	case SymbolQuestion:
		return "?"
	case SymbolUnrevealed:
		return "-"
	case SymbolFlag:
		return "F"
	case SymbolEmpty, SymbolDecorative:
		return "."
	case SymbolExploded:
		return "*"
	case 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return " "
	}
}

// LogicalState is the normalization of a Symbol the solver reasons on.
type LogicalState uint8

const (
	StateUnrevealed LogicalState = iota
	StateNumber
	StateEmpty
	StateMine
)

func (s LogicalState) String() string {
	switch s {
	case StateNumber:
		return "number"
	case StateEmpty:
		return "empty"
	case StateMine:
		return "mine"
	default:
		return "unrevealed"
	}
}

// Normalize maps a surface symbol to its logical state and, for open
// numbers, the mine count value.
func Normalize(s Symbol) (LogicalState, int8, error) {
	switch {
	case s >= 1 && s <= 8:
		return StateNumber, int8(s), nil
	case s == SymbolEmpty || s == SymbolDecorative:
		return StateEmpty, 0, nil
	case s == SymbolFlag || s == SymbolExploded:
		return StateMine, 0, nil
	case s == SymbolUnrevealed || s == SymbolQuestion:
		return StateUnrevealed, 0, nil
	default:
		return StateUnrevealed, 0, fmt.Errorf("unknown surface symbol %d", s)
	}
}

// TopoState is the structural role a cell currently plays.
type TopoState uint8

const (
	// TopoOutOfScope marks a placeholder for a coordinate adjacent to
	// the observed region but never itself observed.
	TopoOutOfScope TopoState = iota
	TopoNone
	TopoJustObserved
	TopoToVisualize
	TopoActive
	TopoFrontier
	TopoSolved
)

func (t TopoState) String() string {
	switch t {
	case TopoNone:
		return "none"
	case TopoJustObserved:
		return "just_observed"
	case TopoToVisualize:
		return "to_visualize"
	case TopoActive:
		return "active"
	case TopoFrontier:
		return "frontier"
	case TopoSolved:
		return "solved"
	default:
		return "out_of_scope"
	}
}

// Focus is the inter-cycle relevance memory. Active cells carry the
// reduce pair, frontier cells the process pair, everything else none.
type Focus uint8

const (
	FocusNone Focus = iota
	FocusToReduce
	FocusReduced
	FocusToProcess
	FocusProcessed
)

func (f Focus) String() string {
	switch f {
	case FocusToReduce:
		return "to_reduce"
	case FocusReduced:
		return "reduced"
	case FocusToProcess:
		return "to_process"
	case FocusProcessed:
		return "processed"
	default:
		return "none"
	}
}

// Cell is the atomic unit of the store. Created on first observation,
// never deleted, only mutated through the commit path.
type Cell struct {
	Symbol Symbol
	State  LogicalState
	Number int8 // 1..8 iff State == StateNumber
	Topo   TopoState
	Focus  Focus
	Zone   ZoneID // non-zero iff Topo == TopoFrontier

	// Guessed marks a to_visualize cell whose pending reveal is a
	// probability guess, not a deduction. Constraints over it carry no
	// information until perception reads the outcome back.
	Guessed bool
}

var (
	errNumberPairing = errors.New("number value must pair with open-number state")
	errFocusPairing  = errors.New("focus level set outside active/frontier scope")
	errZonePairing   = errors.New("zone id set on a non-frontier cell")
	errGuessPairing  = errors.New("guess marker set outside to_visualize scope")
)

// Validate enforces the cross-field pairing rules. Any violation is a
// hard error: the upstream observation or a solver pass is broken.
func (c Cell) Validate() error {
	hasNumber := c.Number >= 1 && c.Number <= 8
	if (c.State == StateNumber) != hasNumber {
		return errNumberPairing
	}
	switch c.Topo {
	case TopoActive:
		if c.Focus != FocusToReduce && c.Focus != FocusReduced {
			return errFocusPairing
		}
	case TopoFrontier:
		if c.Focus != FocusToProcess && c.Focus != FocusProcessed {
			return errFocusPairing
		}
	default:
		if c.Focus != FocusNone {
			return errFocusPairing
		}
	}
	if (c.Topo == TopoFrontier) != (c.Zone != 0) {
		return errZonePairing
	}
	if c.Guessed && c.Topo != TopoToVisualize {
		return errGuessPairing
	}
	return nil
}

// Unrevealed reports whether the real board surface at this cell is
// still covered. Cells pending re-observation count: a safe deduction
// does not open anything until the actuator does.
func (c Cell) Unrevealed() bool {
	return c.State == StateUnrevealed
}

// InvariantError reports a broken store or cell invariant. It is fatal
// for the solve cycle that produced it.
type InvariantError struct {
	At     Point
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated at (%d,%d): %s", e.At.X, e.At.Y, e.Reason)
}

func invariant(at Point, format string, args ...any) *InvariantError {
	return &InvariantError{At: at, Reason: fmt.Sprintf(format, args...)}
}
