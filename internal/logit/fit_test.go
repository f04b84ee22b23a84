package logit

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ownClusters gives every observation its own cluster, reducing the
// sandwich to a plain heteroskedasticity-robust estimate.
func ownClusters(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("c%d", i)
	}
	return out
}

func TestFitSaturatedTwoByTwo(t *testing.T) {
	// Group x=0: 1 success out of 4. Group x=1: 3 out of 4.
	// The MLE slope of a saturated 2x2 logit is the log odds ratio:
	// ln((3/1)/(1/3)) = ln 9.
	y := []float64{1, 0, 0, 0, 1, 1, 1, 0}
	x := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	res := Fit(y, x, ownClusters(len(y)))
	require.False(t, res.Degenerate())

	assert.InDelta(t, math.Log(9), res.Beta, 1e-4)
	assert.InDelta(t, 9.0, res.OR, 1e-3)
	assert.Greater(t, res.SE, 0.0)
	assert.Less(t, res.CILow, res.Beta)
	assert.Greater(t, res.CIHigh, res.Beta)
	assert.InDelta(t, math.Exp(res.CILow), res.ORLow, 1e-9)
	assert.InDelta(t, math.Exp(res.CIHigh), res.ORHigh, 1e-9)
	assert.Greater(t, res.P, 0.0)
	assert.Less(t, res.P, 1.0)
}

func TestFitNoEffect(t *testing.T) {
	// Identical success rates in both groups: the slope is exactly zero
	// and the odds ratio exactly one.
	y := []float64{0, 1, 0, 1}
	x := []float64{0, 0, 1, 1}

	res := Fit(y, x, ownClusters(len(y)))
	require.False(t, res.Degenerate())

	assert.InDelta(t, 0.0, res.Beta, 1e-8)
	assert.InDelta(t, 1.0, res.OR, 1e-8)
	assert.InDelta(t, 1.0, res.P, 1e-6, "no effect means p close to one")
}

func TestFitDegenerateCases(t *testing.T) {
	t.Run("Perfect separation", func(t *testing.T) {
		y := []float64{0, 0, 0, 1, 1, 1}
		x := []float64{0, 0, 0, 1, 1, 1}
		res := Fit(y, x, ownClusters(len(y)))
		assert.True(t, res.Degenerate())
		assert.True(t, math.IsNaN(res.OR))
		assert.True(t, math.IsNaN(res.P))
	})

	t.Run("Constant predictor", func(t *testing.T) {
		y := []float64{0, 1, 0, 1}
		x := []float64{1, 1, 1, 1}
		res := Fit(y, x, ownClusters(len(y)))
		assert.True(t, res.Degenerate())
	})

	t.Run("Single cluster", func(t *testing.T) {
		y := []float64{1, 0, 0, 0, 1, 1, 1, 0}
		x := []float64{0, 0, 0, 0, 1, 1, 1, 1}
		res := Fit(y, x, []string{"a", "a", "a", "a", "a", "a", "a", "a"})
		assert.True(t, res.Degenerate(), "one cluster leaves no degrees of freedom")
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.True(t, Fit(nil, nil, nil).Degenerate())
	})

	t.Run("Length mismatch", func(t *testing.T) {
		assert.True(t, Fit([]float64{1}, []float64{1, 0}, []string{"a"}).Degenerate())
	})
}

func TestFitClusteringChangesSE(t *testing.T) {
	y := []float64{1, 0, 0, 0, 1, 1, 1, 0, 1, 0, 1, 1}
	x := []float64{0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 1, 1}

	perObs := Fit(y, x, ownClusters(len(y)))
	grouped := Fit(y, x, []string{"a", "a", "b", "b", "c", "c", "d", "d", "e", "e", "f", "f"})

	require.False(t, perObs.Degenerate())
	require.False(t, grouped.Degenerate())

	assert.InDelta(t, perObs.Beta, grouped.Beta, 1e-10,
		"the point estimate does not depend on clustering")
	assert.NotEqual(t, perObs.SE, grouped.SE,
		"the sandwich must reflect the grouping")
	assert.Greater(t, grouped.SE, 0.0)
}
