package gamesummary

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/formula"
	"github.com/carachess/profiler/record"
)

// cplCap bounds individual CPL values when averaging, so that a single
// mate-losing blunder does not dominate the mean. Median, min and max are
// computed from the uncapped values.
const cplCap = 500.0

// capCPL returns the values with each entry bounded to cplCap.
func capCPL(values []float64) []float64 {
	return lo.Map(values, func(v float64, _ int) float64 {
		return min(v, cplCap)
	})
}

// CappedMean averages the values after capping each at cplCap. Returns 0
// for an empty slice.
func CappedMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(capCPL(values), nil)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// PlayerStats computes a single player's whole-game statistics. Book moves
// are counted but excluded from CPL aggregates and from the non-book move
// total. Accuracy and estimated Elo come from the configured formulas, with
// the fixed fallback values used when a formula fails to evaluate.
func PlayerStats(cfg *config.Config, moves []record.MoveRecord, side record.Side, result record.Result) PlayerStatistics {
	var s PlayerStatistics
	var cplValues []float64

	for i := range moves {
		m := &moves[i]
		if m.Move(side) == "" {
			continue
		}
		s.TotalMoves++
		assessment := m.Assessment(side)

		if m.IsTop3(side) && assessment != record.AssessBook {
			s.Top3Moves++
		}

		switch assessment {
		case record.AssessBook:
			s.BookMoves++
		case record.AssessBrilliant:
			s.BrilliantMoves++
			s.NonBookMoves++
		case record.AssessBest:
			s.BestMoves++
			s.NonBookMoves++
		case record.AssessGood:
			s.GoodMoves++
			s.NonBookMoves++
		case record.AssessInaccuracy:
			s.Inaccuracies++
			s.NonBookMoves++
		case record.AssessMistake:
			s.Mistakes++
			s.NonBookMoves++
		case record.AssessMiss:
			s.Misses++
			s.NonBookMoves++
		case record.AssessBlunder:
			s.Blunders++
			s.NonBookMoves++
		}

		if assessment != record.AssessBook {
			if cpl, ok := record.ParseCPL(m.CPL(side)); ok {
				cplValues = append(cplValues, cpl)
			}
		}
	}

	if len(cplValues) > 0 {
		s.AverageCPL = CappedMean(cplValues)
		sorted := append([]float64(nil), cplValues...)
		sort.Float64s(sorted)
		s.MedianCPL = median(sorted)
		s.MinCPL = sorted[0]
		s.MaxCPL = sorted[len(sorted)-1]
	}

	var blunderRate, mistakeRate float64
	if s.TotalMoves > 0 {
		blunderRate = float64(s.Blunders) / float64(s.TotalMoves)
		mistakeRate = float64(s.Mistakes) / float64(s.TotalMoves)
	}

	hasWon := 0.0
	if result.WonBy(side) {
		hasWon = 1.0
	}
	hasDrawn := 0.0
	if result.Undecided() {
		hasDrawn = 1.0
	}

	vars := map[string]float64{
		"average_cpl":     s.AverageCPL,
		"total_moves":     float64(s.TotalMoves),
		"non_book_moves":  float64(s.NonBookMoves),
		"book_moves":      float64(s.BookMoves),
		"blunders":        float64(s.Blunders),
		"mistakes":        float64(s.Mistakes),
		"inaccuracies":    float64(s.Inaccuracies),
		"misses":          float64(s.Misses),
		"best_moves":      float64(s.BestMoves),
		"good_moves":      float64(s.GoodMoves),
		"brilliant_moves": float64(s.BrilliantMoves),
		"median_cpl":      s.MedianCPL,
		"min_cpl":         s.MinCPL,
		"max_cpl":         s.MaxCPL,
		"blunder_rate":    blunderRate,
		"mistake_rate":    mistakeRate,
		"has_won":         hasWon,
		"has_drawn":       hasDrawn,
	}

	accuracy := formula.Evaluate(cfg.AccuracyFormula, vars, cfg.AccuracyFallback)
	s.Accuracy = min(100.0, max(0.0, accuracy))

	vars["accuracy"] = s.Accuracy
	elo := formula.Evaluate(cfg.EloFormula, vars, cfg.EloFallback)
	s.EstimatedElo = max(0, int(elo))

	if s.TotalMoves > 0 {
		s.BestMovePct = float64(s.BestMoves) / float64(s.TotalMoves) * 100
		s.Top3MovePct = float64(s.Top3Moves) / float64(s.TotalMoves) * 100
		s.BlunderRate = float64(s.Blunders) / float64(s.TotalMoves) * 100
	}
	return s
}

// PhaseStats computes per-phase statistics for one player. Phase accuracy
// uses a fixed CPL-based curve rather than the configurable formula.
func PhaseStats(moves []record.MoveRecord, side record.Side, openingEnd, middlegameEnd int) PhaseSet {
	buckets := map[Phase][]record.MoveRecord{}
	for i := range moves {
		m := moves[i]
		if m.Move(side) == "" {
			continue
		}
		p := PhaseOf(m.MoveNumber, openingEnd, middlegameEnd)
		buckets[p] = append(buckets[p], m)
	}
	return PhaseSet{
		Opening:    phaseStats(buckets[PhaseOpening], side),
		Middlegame: phaseStats(buckets[PhaseMiddlegame], side),
		Endgame:    phaseStats(buckets[PhaseEndgame], side),
	}
}

func phaseStats(moves []record.MoveRecord, side record.Side) PhaseStatistics {
	var ps PhaseStatistics
	ps.Moves = len(moves)
	var cplValues []float64

	for i := range moves {
		m := &moves[i]
		assessment := m.Assessment(side)
		switch assessment {
		case record.AssessBook:
			ps.BookMoves++
		case record.AssessBrilliant:
			ps.BrilliantMoves++
		case record.AssessBest:
			ps.BestMoves++
		case record.AssessGood:
			ps.GoodMoves++
		case record.AssessInaccuracy:
			ps.Inaccuracies++
		case record.AssessMistake:
			ps.Mistakes++
		case record.AssessMiss:
			ps.Misses++
		case record.AssessBlunder:
			ps.Blunders++
		}
		if assessment != record.AssessBook {
			if cpl, ok := record.ParseCPL(m.CPL(side)); ok {
				cplValues = append(cplValues, cpl)
			}
		}
	}

	ps.AverageCPL = CappedMean(cplValues)
	ps.Accuracy = max(5.0, min(100.0, 100.0-ps.AverageCPL/3.5))
	return ps
}
