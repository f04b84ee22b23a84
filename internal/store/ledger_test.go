package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("In-memory", func(t *testing.T) {
		l, err := Open(":memory:")
		require.NoError(t, err)
		defer l.Close()
	})

	t.Run("Creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "ledger.db")
		l, err := Open(path)
		require.NoError(t, err)
		defer l.Close()
		assert.FileExists(t, path)
	})

	t.Run("Empty path rejected", func(t *testing.T) {
		_, err := Open("")
		assert.Error(t, err)
	})
}

func TestRecordAndListRuns(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer l.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stages := []string{"reshape", "analyze", "plot"}
	for i, stage := range stages {
		_, err := l.RecordRun(Run{
			Stage:    stage,
			Input:    "in.csv",
			Output:   "out.csv",
			Rows:     145,
			Duration: 80 * time.Millisecond,
			Started:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	t.Run("Newest first", func(t *testing.T) {
		runs, err := l.ListRuns(0)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, "plot", runs[0].Stage)
		assert.Equal(t, "reshape", runs[2].Stage)
	})

	t.Run("Limit", func(t *testing.T) {
		runs, err := l.ListRuns(1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "plot", runs[0].Stage)
	})

	t.Run("Fields round trip", func(t *testing.T) {
		runs, err := l.ListRuns(0)
		require.NoError(t, err)
		r := runs[0]
		assert.NotEmpty(t, r.ID, "id assigned on insert")
		assert.Equal(t, "in.csv", r.Input)
		assert.Equal(t, "out.csv", r.Output)
		assert.Equal(t, 145, r.Rows)
		assert.Equal(t, 80*time.Millisecond, r.Duration)
		assert.True(t, r.Started.Equal(base.Add(2*time.Minute)))
	})

	t.Run("Warning stored", func(t *testing.T) {
		id, err := l.RecordRun(Run{Stage: "reshape", Warning: "uneven clusters: I9"})
		require.NoError(t, err)

		runs, err := l.ListRuns(0)
		require.NoError(t, err)
		var found bool
		for _, r := range runs {
			if r.ID == id {
				found = true
				assert.Equal(t, "uneven clusters: I9", r.Warning)
			}
		}
		assert.True(t, found)
	})

	t.Run("Duplicate id rejected", func(t *testing.T) {
		id, err := l.RecordRun(Run{Stage: "plot"})
		require.NoError(t, err)
		_, err = l.RecordRun(Run{ID: id, Stage: "plot"})
		assert.Error(t, err)
	})
}
