package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 15, cfg.OpeningMoves)
	assert.Equal(t, 50, cfg.GoodMoveMaxCPL)
	assert.Equal(t, 100, cfg.InaccuracyMaxCPL)
	assert.Equal(t, 200, cfg.MistakeMaxCPL)
	assert.Equal(t, 7, cfg.HighlightsPerPhase)
	assert.Equal(t, DefaultAccuracyFormula, cfg.AccuracyFormula)
	assert.Equal(t, DefaultEloFormula, cfg.EloFormula)
	assert.Equal(t, 20.0, cfg.ErrorPatterns.PhaseBlunderPct)
	assert.Equal(t, SeverityCuts{30, 50, 70}, cfg.ErrorPatterns.PhaseBlunderSeverity)
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().OpeningMoves, cfg.OpeningMoves)
	assert.Equal(t, Default().ErrorPatterns.WinningEval, cfg.ErrorPatterns.WinningEval)
}

func TestLoadFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiler.yaml")
	content := []byte("opening_moves: 12\nerror_patterns:\n  high_cpl: 75\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.OpeningMoves)
	assert.Equal(t, 75.0, cfg.ErrorPatterns.HighCPL)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().MistakeMaxCPL, cfg.MistakeMaxCPL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
