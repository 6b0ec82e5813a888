package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"form-snippets/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRounds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "police_03_11_1_2.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "police_03_11_1_2.txt"), []byte("label police\n"), 0o644))

	reg := dataset.NewRegistry()
	reg.Put("0311", "donnees/0311.png")

	s := newSession(dir, reg, 3, 7)
	for i := 0; i < 3; i++ {
		require.False(t, s.done())
		sample, sidecar, err := s.next()
		require.NoError(t, err)
		assert.Equal(t, "police", sample.Label)
		assert.Equal(t, "label police\n", sidecar)
		s.answer(i != 1, "")
	}

	assert.True(t, s.done())
	assert.InDelta(t, 2.0/3.0, s.precision(), 1e-12)
	assert.InDelta(t, 2.0/3.0, s.checker.TotalPrecision(), 1e-12)
	assert.Equal(t, 1.0, s.checker.TotalRecall())
	_, _, err := s.next()
	assert.Error(t, err)
}

func TestSessionPerLabelFigures(t *testing.T) {
	s := newSession(t.TempDir(), dataset.NewRegistry(), 10, 1)
	review := func(label string, ok bool, truth string) {
		s.current = dataset.Sample{Label: label}
		s.answer(ok, truth)
	}

	review("fire", true, "")
	review("fire", false, "gas")
	review("gas", true, "")
	review("fire", true, "")
	review("car", false, "fire")

	assert.Equal(t, 3, s.checker.LabelCount("fire"))
	// fire 2/3, gas 1/1, car 0/1
	assert.InDelta(t, (2.0/3.0+1+0)/3, s.checker.TotalPrecision(), 1e-12)
	// fire 2/3, gas 1/2
	assert.InDelta(t, (2.0/3.0+0.5)/2, s.checker.TotalRecall(), 1e-12)

	r := s.checker.Report(time.Time{}, 0)
	assert.Equal(t, 5, r.Audits)
	assert.InDelta(t, 0.6, r.AuditPrecision, 1e-12)
	assert.InDelta(t, (2.0/3.0+0.5)/2, r.Recall, 1e-12)
}

func TestSessionNoSnippets(t *testing.T) {
	s := newSession(t.TempDir(), dataset.NewRegistry(), 5, 1)
	_, _, err := s.next()
	assert.ErrorIs(t, err, dataset.ErrNoSnippets)
}
