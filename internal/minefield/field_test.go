package minefield

import (
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

func TestMain(m *testing.M) {
	Log.SetLevel(logrus.ErrorLevel)
	Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	m.Run()
}

func testField(t *testing.T, params Params, first grid.Point, seed uint64) *Field {
	t.Helper()
	f, err := New(params, first, rand.New(rand.NewPCG(seed, 0)))
	require.NoError(t, err)
	return f
}

func TestNewRejectsBadParams(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 0))
	tests := []struct {
		name   string
		params Params
	}{
		{name: "no mines", params: Params{Width: 9, Height: 9, Mines: 0}},
		{name: "negative", params: Params{Width: 9, Height: 9, Mines: -4}},
		{name: "no room for opening", params: Params{Width: 4, Height: 4, Mines: 7}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.params, grid.Point{X: 1, Y: 1}, r)
			assert.ErrorIs(t, err, ErrBadParams)
		})
	}
}

func TestFirstClickNeighborhoodIsClear(t *testing.T) {
	first := grid.Point{X: 4, Y: 4}
	for seed := uint64(1); seed <= 20; seed++ {
		f := testField(t, Params{Width: 9, Height: 9, Mines: 30}, first, seed)
		assert.False(t, f.mines[f.index(first)], "seed %d", seed)
		for _, n := range first.Neighbors() {
			assert.False(t, f.mines[f.index(n)], "seed %d neighbor %v", seed, n)
		}
		assert.False(t, f.Open(first), "seed %d", seed)
	}
}

func TestMineCountsAreConsistent(t *testing.T) {
	f := testField(t, Params{Width: 16, Height: 16, Mines: 40}, grid.Point{X: 8, Y: 8}, 7)
	planted := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			p := grid.Point{X: x, Y: y}
			if f.mines[f.index(p)] {
				planted++
				continue
			}
			want := int8(0)
			for _, n := range p.Neighbors() {
				if f.contains(n) && f.mines[f.index(n)] {
					want++
				}
			}
			assert.Equal(t, want, f.counts[f.index(p)], "at %v", p)
		}
	}
	assert.Equal(t, 40, planted)
}

func TestOpenFloodFillsZeroRegion(t *testing.T) {
	first := grid.Point{X: 4, Y: 4}
	f := testField(t, Params{Width: 9, Height: 9, Mines: 10}, first, 3)
	require.False(t, f.Open(first))

	// the opening flood must reveal the clicked cell and at least its
	// immediate ring (all of which are mine-free by construction)
	assert.GreaterOrEqual(t, f.opened, 1)
	if f.counts[f.index(first)] == 0 {
		for _, n := range first.Neighbors() {
			assert.True(t, f.open[f.index(n)], "flood missed %v", n)
		}
	}

	// flood never crosses a number: every open cell is a non-mine
	for i, open := range f.open {
		if open {
			assert.False(t, f.mines[i])
		}
	}
}

func TestOpenMineExplodes(t *testing.T) {
	f := testField(t, Params{Width: 9, Height: 9, Mines: 10}, grid.Point{X: 4, Y: 4}, 3)
	for y := 0; y < 9 && !f.Exploded(); y++ {
		for x := 0; x < 9; x++ {
			p := grid.Point{X: x, Y: y}
			if f.mines[f.index(p)] {
				assert.True(t, f.Open(p))
				assert.True(t, f.Exploded())
				break
			}
		}
	}
	require.True(t, f.Exploded())
	assert.False(t, f.Won())
}

func TestFlagBlocksOpen(t *testing.T) {
	f := testField(t, Params{Width: 9, Height: 9, Mines: 10}, grid.Point{X: 4, Y: 4}, 5)
	p := grid.Point{X: 0, Y: 0}
	f.Flag(p)
	assert.False(t, f.Open(p), "flagged cells must not open")
	assert.False(t, f.open[f.index(p)])

	min, max := f.Bounds()
	batch := f.View(min, max)
	assert.Equal(t, grid.SymbolFlag, batch[p])
}

func TestViewRendersDecorativeRim(t *testing.T) {
	f := testField(t, Params{Width: 9, Height: 9, Mines: 10}, grid.Point{X: 4, Y: 4}, 5)
	min, max := f.Bounds()
	assert.Equal(t, grid.Point{X: -1, Y: -1}, min)
	assert.Equal(t, grid.Point{X: 9, Y: 9}, max)

	batch := f.View(min, max)
	assert.Len(t, batch, 11*11)
	assert.Equal(t, grid.SymbolDecorative, batch[grid.Point{X: -1, Y: -1}])
	assert.Equal(t, grid.SymbolDecorative, batch[grid.Point{X: 9, Y: 4}])
	assert.Equal(t, grid.SymbolUnrevealed, batch[grid.Point{X: 0, Y: 0}])
}

func TestWon(t *testing.T) {
	f := testField(t, Params{Width: 9, Height: 9, Mines: 10}, grid.Point{X: 4, Y: 4}, 11)
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			p := grid.Point{X: x, Y: y}
			if !f.mines[f.index(p)] {
				require.False(t, f.Open(p))
			}
		}
	}
	assert.True(t, f.Won())
	assert.False(t, f.Exploded())
}
