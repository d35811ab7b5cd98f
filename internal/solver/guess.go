package solver

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
)

// guess picks the unknown cell with the lowest estimated mine
// probability when a cycle produced no certain action. The ranking is
// a policy: it must keep lower real likelihood ranked below higher,
// nothing more. Zone relevance is untouched, and the cell keeps a
// guess marker: a guess proves nothing, so neighboring constraints
// must not treat it as settled before perception reads the outcome.
func (cy *cycle) guess() {
	bestProb := 1.1
	var bestAt grid.Point
	found := false

	for _, comp := range cy.components {
		if len(comp.vars) > cy.opts.MaxComponentVars {
			continue
		}
		comp.enumerate()
		if len(comp.solutions) == 0 {
			// The certainty pass already errors on contradictions in
			// zones that needed work; a stale component with no
			// solutions only means there is nothing to rank here.
			continue
		}
		weights := cy.solutionWeights(comp)

		var total float64
		for _, w := range weights {
			total += w
		}
		if total <= 0 {
			// Budget made every completion infeasible; fall back to
			// counting solutions evenly.
			for i := range weights {
				weights[i] = 1
			}
			total = float64(len(weights))
		}

		for i, v := range comp.vars {
			var mined float64
			for si, sol := range comp.solutions {
				if sol[i] {
					mined += weights[si]
				}
			}
			prob := mined / total
			if prob < bestProb || (prob == bestProb && found && v.Compare(bestAt) < 0) {
				bestProb = prob
				bestAt = v
				found = true
			}
		}
	}

	if !found {
		return
	}

	c, _ := cy.snap.Cell(bestAt)
	c.Topo = grid.TopoToVisualize
	c.Focus = grid.FocusNone
	c.Zone = 0
	c.Guessed = true
	cy.snap.Put(bestAt, c)
	cy.actions = append(cy.actions, Action{At: bestAt, Kind: ActionGuess})
	cy.wake(bestAt)

	Log.WithFields(logrus.Fields{
		"at":   bestAt,
		"prob": bestProb,
	}).Debug("guessing lowest-probability cell")
}

// solutionWeights weighs each enumerated solution by how many ways the
// remaining global mine budget could be spread over the unconstrained
// background. With no known budget, a fixed density plays the same
// role: each extra mine in a solution costs a factor rho/(1-rho).
func (cy *cycle) solutionWeights(comp *component) []float64 {
	weights := make([]float64, len(comp.solutions))

	if cy.opts.TotalMines < 0 {
		ratio := cy.opts.MineDensity / (1 - cy.opts.MineDensity)
		for si, sol := range comp.solutions {
			w := 1.0
			for _, mine := range sol {
				if mine {
					w *= ratio
				}
			}
			weights[si] = w
		}
		return weights
	}

	confirmed, background := cy.countOutside(comp)
	remaining := cy.opts.TotalMines - confirmed

	// Binomials over a large background overflow float64, so work in
	// log space and normalize against the best solution.
	logs := make([]float64, len(comp.solutions))
	maxLog := math.Inf(-1)
	for si, sol := range comp.solutions {
		m := 0
		for _, mine := range sol {
			if mine {
				m++
			}
		}
		logs[si] = logChoose(background, remaining-m)
		if logs[si] > maxLog {
			maxLog = logs[si]
		}
	}
	for si, l := range logs {
		if math.IsInf(l, -1) {
			weights[si] = 0
		} else {
			weights[si] = math.Exp(l - maxLog)
		}
	}
	return weights
}

// countOutside tallies confirmed mines everywhere and the observed
// unrevealed cells outside this component (the unconstrained
// background the leftover budget spreads over).
func (cy *cycle) countOutside(comp *component) (confirmed, background int) {
	cy.snap.EachCell(func(p grid.Point, c grid.Cell) {
		switch {
		case c.State == grid.StateMine:
			confirmed++
		case c.Unrevealed() &&
			c.Topo != grid.TopoOutOfScope &&
			c.Topo != grid.TopoToVisualize:
			if _, inComp := comp.index[p]; !inComp {
				background++
			}
		}
	})
	return confirmed, background
}

// logChoose is ln C(n, k), -Inf when the pick is impossible.
func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	ln1, _ := math.Lgamma(float64(n + 1))
	ln2, _ := math.Lgamma(float64(k + 1))
	ln3, _ := math.Lgamma(float64(n - k + 1))
	return ln1 - ln2 - ln3
}
