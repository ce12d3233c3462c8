package gamesummary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/record"
)

func TestPlayerStatsCounts(t *testing.T) {
	cfg := config.Default()
	moves := []record.MoveRecord{
		{MoveNumber: 1, WhiteMove: "e4", AssessWhite: record.AssessBook},
		{MoveNumber: 2, WhiteMove: "Nf3", AssessWhite: record.AssessBest, CPLWhite: "0", WhiteIsTop3: true},
		{MoveNumber: 3, WhiteMove: "Bb5", AssessWhite: record.AssessGood, CPLWhite: "20", WhiteIsTop3: true},
		{MoveNumber: 4, WhiteMove: "d4", AssessWhite: record.AssessInaccuracy, CPLWhite: "80"},
		{MoveNumber: 5, WhiteMove: "Qh5", AssessWhite: record.AssessBlunder, CPLWhite: "400"},
		{MoveNumber: 6}, // no white move, skipped
	}

	s := PlayerStats(cfg, moves, record.White, record.WhiteWins)
	assert.Equal(t, 5, s.TotalMoves)
	assert.Equal(t, 1, s.BookMoves)
	assert.Equal(t, 4, s.NonBookMoves)
	assert.Equal(t, 1, s.BestMoves)
	assert.Equal(t, 1, s.GoodMoves)
	assert.Equal(t, 1, s.Inaccuracies)
	assert.Equal(t, 1, s.Blunders)
	assert.Equal(t, 2, s.Top3Moves)

	assert.InDelta(t, 125.0, s.AverageCPL, 1e-9) // (0+20+80+400)/4
	assert.InDelta(t, 50.0, s.MedianCPL, 1e-9)   // (20+80)/2
	assert.InDelta(t, 0.0, s.MinCPL, 1e-9)
	assert.InDelta(t, 400.0, s.MaxCPL, 1e-9)

	assert.InDelta(t, 20.0, s.BestMovePct, 1e-9)
	assert.InDelta(t, 40.0, s.Top3MovePct, 1e-9)
	assert.InDelta(t, 20.0, s.BlunderRate, 1e-9)
}

func TestPlayerStatsCPLCap(t *testing.T) {
	cfg := config.Default()
	moves := []record.MoveRecord{
		{MoveNumber: 1, WhiteMove: "a4", AssessWhite: record.AssessBlunder, CPLWhite: "2500"},
		{MoveNumber: 2, WhiteMove: "a5", AssessWhite: record.AssessGood, CPLWhite: "100"},
	}
	s := PlayerStats(cfg, moves, record.White, record.Draw)

	// The mate-sized loss is capped at 500 for the mean only.
	assert.InDelta(t, 300.0, s.AverageCPL, 1e-9)
	assert.InDelta(t, 2500.0, s.MaxCPL, 1e-9)
	assert.InDelta(t, 1300.0, s.MedianCPL, 1e-9)
}

func TestCappedMeanIdempotentBelowCap(t *testing.T) {
	values := []float64{10, 20, 499, 500}
	assert.InDelta(t, CappedMean(values), (10.0+20+499+500)/4, 1e-9)
	assert.LessOrEqual(t, CappedMean([]float64{5000, 9000}), 500.0)
	assert.Zero(t, CappedMean(nil))
}

func TestPerfectGameHitsFormulaCaps(t *testing.T) {
	cfg := config.Default()
	moves := []record.MoveRecord{
		{MoveNumber: 1, BlackMove: "c5", AssessBlack: record.AssessBest, CPLBlack: "0"},
		{MoveNumber: 2, BlackMove: "d6", AssessBlack: record.AssessBest, CPLBlack: "0"},
	}
	s := PlayerStats(cfg, moves, record.Black, record.BlackWins)
	assert.Equal(t, 100.0, s.Accuracy)
	assert.Equal(t, 2800, s.EstimatedElo)
}

func TestPlayerStatsFormulaFallback(t *testing.T) {
	cfg := config.Default()
	cfg.AccuracyFormula = "not a formula ("
	cfg.AccuracyFallback = 33
	cfg.EloFormula = "also broken ["
	cfg.EloFallback = 1200

	moves := []record.MoveRecord{
		{MoveNumber: 1, WhiteMove: "e4", AssessWhite: record.AssessGood, CPLWhite: "30"},
	}
	s := PlayerStats(cfg, moves, record.White, record.Draw)
	assert.Equal(t, 33.0, s.Accuracy)
	assert.Equal(t, 1200, s.EstimatedElo)
}

func TestPlayerStatsEmpty(t *testing.T) {
	cfg := config.Default()
	s := PlayerStats(cfg, nil, record.White, record.Result(""))
	assert.Zero(t, s.TotalMoves)
	assert.Zero(t, s.AverageCPL)
	// accuracy formula still evaluates: 100 - 0/3.5 clamped at 100
	assert.Equal(t, 100.0, s.Accuracy)
}

func TestPhaseStats(t *testing.T) {
	moves := []record.MoveRecord{
		{MoveNumber: 1, WhiteMove: "e4", AssessWhite: record.AssessBook},
		{MoveNumber: 2, WhiteMove: "d4", AssessWhite: record.AssessGood, CPLWhite: "35"},
		{MoveNumber: 11, WhiteMove: "Nc3", AssessWhite: record.AssessMistake, CPLWhite: "140"},
		{MoveNumber: 30, WhiteMove: "Kf2", AssessWhite: record.AssessBlunder, CPLWhite: "350"},
	}

	phases := PhaseStats(moves, record.White, 10, 25)

	assert.Equal(t, 2, phases.Opening.Moves)
	assert.Equal(t, 1, phases.Opening.BookMoves)
	assert.Equal(t, 1, phases.Opening.GoodMoves)
	assert.InDelta(t, 35.0, phases.Opening.AverageCPL, 1e-9)
	assert.InDelta(t, 90.0, phases.Opening.Accuracy, 1e-9)

	assert.Equal(t, 1, phases.Middlegame.Moves)
	assert.Equal(t, 1, phases.Middlegame.Mistakes)
	assert.InDelta(t, 140.0, phases.Middlegame.AverageCPL, 1e-9)
	assert.InDelta(t, 60.0, phases.Middlegame.Accuracy, 1e-9)

	assert.Equal(t, 1, phases.Endgame.Moves)
	assert.Equal(t, 1, phases.Endgame.Blunders)
	// 100 - 350/3.5 = 0, floored at 5
	assert.InDelta(t, 5.0, phases.Endgame.Accuracy, 1e-9)

	assert.Equal(t, phases.Opening, phases.ByPhase(PhaseOpening))
	assert.Equal(t, phases.Endgame, phases.ByPhase(PhaseEndgame))
}
