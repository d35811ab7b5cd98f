package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

func testComponent(constraints []constraint, varCount int) *component {
	comp := &component{index: make(map[grid.Point]int)}
	for i := 0; i < varCount; i++ {
		p := grid.Point{X: i}
		comp.vars = append(comp.vars, p)
		comp.index[p] = i
	}
	comp.constraints = constraints
	return comp
}

func TestEnumerate(t *testing.T) {
	// a+b+c+d = 2 and b+c+d+e = 1 force a mined and e safe: e mined
	// would empty the middle and leave the first constraint short.
	comp := testComponent([]constraint{
		{required: 2, vars: []int{0, 1, 2, 3}},
		{required: 1, vars: []int{1, 2, 3, 4}},
	}, 5)
	comp.enumerate()

	require.Len(t, comp.solutions, 3)
	for _, sol := range comp.solutions {
		assert.True(t, sol[0], "a is mined in every solution")
		assert.False(t, sol[4], "e is safe in every solution")
	}
}

func TestEnumerateUnsatisfiable(t *testing.T) {
	// odd cycle: a+b = 1, b+c = 1, a+c = 1
	comp := testComponent([]constraint{
		{required: 1, vars: []int{0, 1}},
		{required: 1, vars: []int{1, 2}},
		{required: 1, vars: []int{0, 2}},
	}, 3)
	comp.enumerate()
	assert.Empty(t, comp.solutions)
}

// bruteForceSolutions checks every one of the 2^n assignments against
// the raw constraints. Reference for the pruned search.
func bruteForceSolutions(comp *component) [][]bool {
	var out [][]bool
	n := len(comp.vars)
	for mask := 0; mask < 1<<n; mask++ {
		assign := make([]bool, n)
		for i := range assign {
			assign[i] = mask&(1<<i) != 0
		}
		ok := true
		for _, cons := range comp.constraints {
			mines := 0
			for _, vi := range cons.vars {
				if assign[vi] {
					mines++
				}
			}
			if mines != cons.required {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, assign)
		}
	}
	return out
}

func TestEnumerateMatchesBruteForce(t *testing.T) {
	tests := []struct {
		name        string
		vars        int
		constraints []constraint
	}{
		{
			name: "chain of ones",
			vars: 5,
			constraints: []constraint{
				{required: 1, vars: []int{0, 1, 2}},
				{required: 1, vars: []int{1, 2, 3}},
				{required: 1, vars: []int{2, 3, 4}},
			},
		},
		{
			name: "mixed counts",
			vars: 6,
			constraints: []constraint{
				{required: 2, vars: []int{0, 1, 2, 3}},
				{required: 1, vars: []int{2, 3, 4}},
				{required: 2, vars: []int{3, 4, 5}},
			},
		},
		{
			name: "unconstrained tail",
			vars: 4,
			constraints: []constraint{
				{required: 1, vars: []int{0, 1}},
			},
		},
		{
			name: "saturated",
			vars: 3,
			constraints: []constraint{
				{required: 3, vars: []int{0, 1, 2}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			comp := testComponent(test.constraints, test.vars)
			comp.enumerate()
			assert.ElementsMatch(t, bruteForceSolutions(comp), comp.solutions)
		})
	}
}

func TestEnumerateRunsOnce(t *testing.T) {
	comp := testComponent([]constraint{{required: 1, vars: []int{0, 1}}}, 2)
	comp.enumerate()
	require.Len(t, comp.solutions, 2)
	comp.enumerate()
	assert.Len(t, comp.solutions, 2, "enumeration must be memoized")
}

func TestComponentSearchBeyondSubsetRule(t *testing.T) {
	s := newTestSolver(certaintyOptions())

	// The 2 and the 1 overlap without nesting, so reduction alone
	// proves nothing. Exhaustive search still forces both ends.
	actions, err := s.Cycle(observe(
		". . . . .",
		". 2 1 . .",
		"- - - - .",
	))
	require.NoError(t, err)

	assert.Equal(t, map[grid.Point]ActionKind{
		{X: 0, Y: 2}: ActionMine,
		{X: 3, Y: 2}: ActionSafe,
	}, actionMap(actions))

	// the undecidable middle pair stays frontier, fully searched
	for _, x := range []int{1, 2} {
		c := cellAt(t, s, x, 2)
		assert.Equal(t, grid.TopoFrontier, c.Topo, "x=%d", x)
		assert.Equal(t, grid.FocusProcessed, c.Focus, "x=%d", x)
	}
	assert.NoError(t, s.Store().Verify())
}

func TestOversizedComponentDeferred(t *testing.T) {
	opts := certaintyOptions()
	opts.MaxComponentVars = 3
	opts.Guess = true // must still not touch a deferred component
	s := newTestSolver(opts)

	first := observe(
		". . . . .",
		". 1 1 1 .",
		"- - - - -",
	)
	actions, err := s.Cycle(first)
	require.NoError(t, err)
	assert.Empty(t, actions, "five unknowns exceed the bound; defer, do not guess")

	for x := 0; x <= 4; x++ {
		c := cellAt(t, s, x, 2)
		assert.Equal(t, grid.TopoFrontier, c.Topo, "x=%d", x)
		assert.Equal(t, grid.FocusToProcess, c.Focus,
			"deferred cells keep their relevance at x=%d", x)
	}
	assert.NoError(t, s.Store().Verify())

	// Opening both ends shrinks the component under the bound; the
	// solve goes through on the next cycle.
	actions, err = s.Cycle(observe(
		". . . . .",
		". 1 1 1 .",
		". - - - .",
	))
	require.NoError(t, err)
	assert.Equal(t, map[grid.Point]ActionKind{
		{X: 1, Y: 2}: ActionSafe,
		{X: 2, Y: 2}: ActionMine,
		{X: 3, Y: 2}: ActionSafe,
	}, actionMap(actions))
	assert.NoError(t, s.Store().Verify())
}

func TestIndependentComponentsSolvedSeparately(t *testing.T) {
	s := newTestSolver(certaintyOptions())

	// The same search-only pattern twice, with a revealed gap between
	// the frontiers. Actions come out row-major, left component first.
	actions, err := s.Cycle(observe(
		". . . . . . . . . . .",
		". 2 1 . . . . 2 1 . .",
		"- - - - . . - - - - .",
	))
	require.NoError(t, err)
	assert.Equal(t, []Action{
		{At: grid.Point{X: 0, Y: 2}, Kind: ActionMine},
		{At: grid.Point{X: 3, Y: 2}, Kind: ActionSafe},
		{At: grid.Point{X: 6, Y: 2}, Kind: ActionMine},
		{At: grid.Point{X: 9, Y: 2}, Kind: ActionSafe},
	}, actions)
	assert.NoError(t, s.Store().Verify())
}
