package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		symbol  Symbol
		state   LogicalState
		number  int8
		wantErr bool
	}{
		{name: "unrevealed", symbol: SymbolUnrevealed, state: StateUnrevealed},
		{name: "question", symbol: SymbolQuestion, state: StateUnrevealed},
		{name: "empty", symbol: SymbolEmpty, state: StateEmpty},
		{name: "decorative", symbol: SymbolDecorative, state: StateEmpty},
		{name: "flag", symbol: SymbolFlag, state: StateMine},
		{name: "exploded", symbol: SymbolExploded, state: StateMine},
		{name: "one", symbol: 1, state: StateNumber, number: 1},
		{name: "eight", symbol: 8, state: StateNumber, number: 8},
		{name: "garbage", symbol: 42, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state, number, err := Normalize(test.symbol)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.state, state)
			assert.Equal(t, test.number, number)
		})
	}
}

func TestCellValidate(t *testing.T) {
	tests := []struct {
		name    string
		cell    Cell
		wantErr bool
	}{
		{
			name: "just observed number",
			cell: Cell{Symbol: 3, State: StateNumber, Number: 3, Topo: TopoJustObserved},
		},
		{
			name: "active to_reduce",
			cell: Cell{Symbol: 1, State: StateNumber, Number: 1, Topo: TopoActive, Focus: FocusToReduce},
		},
		{
			name: "frontier with zone",
			cell: Cell{Symbol: SymbolUnrevealed, Topo: TopoFrontier, Focus: FocusToProcess, Zone: 7},
		},
		{
			name: "solved mine",
			cell: Cell{Symbol: SymbolFlag, State: StateMine, Topo: TopoSolved},
		},
		{
			name: "guessed to_visualize",
			cell: Cell{Symbol: SymbolUnrevealed, Topo: TopoToVisualize, Guessed: true},
		},
		{
			name:    "number without value",
			cell:    Cell{Symbol: 2, State: StateNumber, Topo: TopoJustObserved},
			wantErr: true,
		},
		{
			name:    "value without number state",
			cell:    Cell{Symbol: SymbolEmpty, State: StateEmpty, Number: 4, Topo: TopoSolved},
			wantErr: true,
		},
		{
			name:    "active with frontier focus",
			cell:    Cell{Symbol: 1, State: StateNumber, Number: 1, Topo: TopoActive, Focus: FocusToProcess},
			wantErr: true,
		},
		{
			name:    "frontier without zone",
			cell:    Cell{Symbol: SymbolUnrevealed, Topo: TopoFrontier, Focus: FocusToProcess},
			wantErr: true,
		},
		{
			name:    "zone on non-frontier",
			cell:    Cell{Symbol: SymbolUnrevealed, Topo: TopoNone, Zone: 7},
			wantErr: true,
		},
		{
			name:    "focus outside scope",
			cell:    Cell{Symbol: SymbolEmpty, State: StateEmpty, Topo: TopoSolved, Focus: FocusReduced},
			wantErr: true,
		},
		{
			name:    "guess marker on frontier",
			cell:    Cell{Symbol: SymbolUnrevealed, Topo: TopoFrontier, Focus: FocusToProcess, Zone: 7, Guessed: true},
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cell.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCellUnrevealed(t *testing.T) {
	assert.True(t, Cell{State: StateUnrevealed, Topo: TopoToVisualize}.Unrevealed())
	assert.False(t, Cell{State: StateMine, Topo: TopoSolved}.Unrevealed())
	assert.False(t, Cell{State: StateEmpty, Topo: TopoSolved}.Unrevealed())
}
