package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbits/internal/config"
	"github.com/san-kum/orbits/internal/metrics"
	"github.com/san-kum/orbits/internal/sim"
)

func recordRun(t *testing.T, preset string) (*config.Config, *sim.Result) {
	t.Helper()
	cfg := config.GetPreset(preset)
	s, err := cfg.NewSession(nil)
	require.NoError(t, err)
	s.AddMetric(metrics.NewEnergy())

	result, err := s.Run(context.Background(), sim.RunConfig{Steps: 20, RecordEvery: 10})
	require.NoError(t, err)
	return cfg, result
}

func TestSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, result := recordRun(t, "binary")
	id, err := st.Save(cfg, result)
	require.NoError(t, err)
	assert.Contains(t, id, "binary_")

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "binary", meta.Preset)
	assert.Equal(t, 20, meta.Steps)
	assert.Equal(t, 2, meta.Nodes)
	assert.Contains(t, meta.Metrics, "kinetic_energy")
	require.NotNil(t, meta.Config)
	assert.Equal(t, cfg.Physics.G, meta.Config.Physics.G)
}

func TestLoadTrace(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := recordRun(t, "golden")
	id, err := st.Save(cfg, result)
	require.NoError(t, err)

	trace, err := st.LoadTrace(id)
	require.NoError(t, err)
	require.Len(t, trace, 3)

	assert.Equal(t, []int{0, 10, 20}, []int{trace[0].Step, trace[1].Step, trace[2].Step})
	for i, sample := range trace {
		require.Len(t, sample.Nodes, 5)
		want := result.Trace[i].Nodes[2]
		got := sample.Nodes[2]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Label, got.Label)
		assert.InDelta(t, want.Pos.X, got.Pos.X, 1e-6)
		assert.InDelta(t, want.Vel.Y, got.Vel.Y, 1e-6)
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	for _, p := range []string{"golden", "about"} {
		cfg, result := recordRun(t, p)
		_, err := st.Save(cfg, result)
		require.NoError(t, err)
	}

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.False(t, runs[1].Timestamp.Before(runs[0].Timestamp))
}

func TestListMissingDir(t *testing.T) {
	st := New("/nonexistent/orbits/runs")
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.LoadTrace("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
