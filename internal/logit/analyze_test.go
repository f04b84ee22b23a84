package logit

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentrvk/bausteine/internal/csvenc"
	"github.com/vincentrvk/bausteine/internal/dataset"
)

// analysisTable builds a small variant table with enough clusters for the
// sandwich estimator and a detectable B1 effect.
func analysisTable() *dataset.Table {
	t := &dataset.Table{BausteinCols: []string{"B1", "B2", "B10"}}
	specs := []struct {
		cluster string
		b1      int
		comps   []int
	}{
		{"I1", 1, []int{1, 1, 1, 0, 1}},
		{"I2", 1, []int{1, 0, 1, 1, 1}},
		{"I3", 0, []int{0, 1, 0, 0, 1}},
		{"I4", 0, []int{0, 0, 1, 0, 0}},
		{"I5", 1, []int{1, 1, 0, 1, 1}},
		{"I6", 0, []int{0, 1, 0, 1, 0}},
	}
	letters := []string{"a", "b", "c", "d", "e"}
	for _, s := range specs {
		for i, comp := range s.comps {
			t.Variants = append(t.Variants, dataset.Variant{
				Variant:    s.cluster + letters[i],
				Cluster:    s.cluster,
				NBausteine: 1 + s.b1,
				Comp:       comp,
				Pass:       1 - comp,
				Bausteine:  map[string]int{"B1": s.b1, "B2": 1, "B10": 0},
			})
		}
	}
	return t
}

func TestAnalyzeTable(t *testing.T) {
	a := AnalyzeTable(analysisTable())

	t.Run("Model A has one row per outcome", func(t *testing.T) {
		require.Len(t, a.Sum, 2)
		assert.Equal(t, "comp", a.Sum[0].Outcome)
		assert.Equal(t, "pass", a.Sum[1].Outcome)
	})

	t.Run("Model B covers every outcome and Baustein", func(t *testing.T) {
		require.Len(t, a.Presence, 6)
	})

	t.Run("Presence rows sorted by outcome then label", func(t *testing.T) {
		var order []string
		for _, r := range a.Presence {
			order = append(order, r.Outcome+"/"+r.Baustein)
		}
		assert.Equal(t, []string{
			"comp/B1", "comp/B10", "comp/B2",
			"pass/B1", "pass/B10", "pass/B2",
		}, order, "lexicographic: B10 sorts before B2")
	})

	t.Run("B1 effect detected with positive OR above one", func(t *testing.T) {
		var b1 PresenceRow
		for _, r := range a.Presence {
			if r.Outcome == "comp" && r.Baustein == "B1" {
				b1 = r
			}
		}
		require.False(t, b1.Degenerate())
		assert.Greater(t, b1.OR, 1.0, "B1 tasks compile more often")
	})

	t.Run("Constant B2 is degenerate, not fatal", func(t *testing.T) {
		for _, r := range a.Presence {
			if r.Baustein == "B2" {
				assert.True(t, r.Degenerate())
			}
		}
	})

	t.Run("Mirror outcome flips the slope sign", func(t *testing.T) {
		var comp, pass PresenceRow
		for _, r := range a.Presence {
			if r.Baustein == "B1" && r.Outcome == "comp" {
				comp = r
			}
			if r.Baustein == "B1" && r.Outcome == "pass" {
				pass = r
			}
		}
		require.False(t, comp.Degenerate())
		require.False(t, pass.Degenerate())
		assert.InDelta(t, -comp.Beta, pass.Beta, 1e-6)
	})
}

func TestWriteSumCSV(t *testing.T) {
	rows := []SumRow{
		{Outcome: "comp", Result: Result{Beta: 0.5, SE: 0.25, CILow: 0.01, CIHigh: 0.99,
			OR: 1.5, ORLow: 1.1, ORHigh: 2.5, P: 0.04}},
		{Outcome: "pass", Result: nanResult},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSumCSV(&buf, rows, csvenc.Default))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Outcome;β;SE;CI_low;CI_up;OR;OR_low;OR_up;p", lines[0])
	assert.Equal(t, "comp;0,5;0,25;0,01;0,99;1,5;1,1;2,5;0,04", lines[1])
	assert.Equal(t, "pass;;;;;;;;", lines[2], "degenerate rows export empty numerics")
}

func TestPresenceCSVRoundTrip(t *testing.T) {
	rows := []PresenceRow{
		{Outcome: "comp", Baustein: "B1", Result: Result{Beta: 1.2, SE: 0.3,
			CILow: 0.612, CIHigh: 1.788, OR: 3.32, ORLow: 1.84, ORHigh: 5.98, P: 0.0001}},
		{Outcome: "pass", Baustein: "B1", Result: nanResult},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePresenceCSV(&buf, rows, csvenc.Default))
	assert.True(t, strings.HasPrefix(buf.String(),
		"Outcome;Baustein;β;SE;CI_low;CI_up;OR;OR_low;OR_up;p\n"))

	got, err := ReadPresenceCSV(bytes.NewReader(buf.Bytes()), csvenc.Default)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "B1", got[0].Baustein)
	assert.Equal(t, 3.32, got[0].OR)
	assert.Equal(t, 1.84, got[0].ORLow)
	assert.True(t, math.IsNaN(got[1].OR), "empty fields come back as NaN")
}

func TestReadPresenceCSVErrors(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := ReadPresenceCSV(strings.NewReader(""), csvenc.Default)
		assert.Error(t, err)
	})

	t.Run("Missing OR columns", func(t *testing.T) {
		_, err := ReadPresenceCSV(strings.NewReader("Outcome;Baustein\ncomp;B1\n"), csvenc.Default)
		assert.Error(t, err)
	})
}
