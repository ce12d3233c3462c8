package gamesummary

import (
	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/highlights"
	"github.com/carachess/profiler/record"
)

// criticalMoveCount is how many entries each worst/best list carries.
const criticalMoveCount = 3

// Builder assembles complete game summaries. It is safe for concurrent use.
type Builder struct {
	cfg      *config.Config
	detector highlights.Detector
}

// NewBuilder returns a Builder using cfg and the standard highlight rules.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:      cfg,
		detector: highlights.NewRuleDetector(cfg.HighlightsPerPhase),
	}
}

// Build computes the full summary for one game's analyzed moves. totalMoves
// is the game's move-pair count; result feeds the has_won/has_drawn formula
// variables.
func (b *Builder) Build(moves []record.MoveRecord, totalMoves int, result record.Result) *GameSummary {
	summary := &GameSummary{
		WhiteStats: PlayerStats(b.cfg, moves, record.White, result),
		BlackStats: PlayerStats(b.cfg, moves, record.Black, result),
	}

	openingEnd, middlegameEnd := PhaseBoundaries(b.cfg, moves, totalMoves)
	summary.OpeningEnd = openingEnd
	summary.MiddlegameEnd = middlegameEnd
	summary.EndgameType = endgameLabel(moves, totalMoves, middlegameEnd)

	summary.WhitePhases = PhaseStats(moves, record.White, openingEnd, middlegameEnd)
	summary.BlackPhases = PhaseStats(moves, record.Black, openingEnd, middlegameEnd)

	summary.WhiteWorst = WorstMoves(moves, record.White, criticalMoveCount)
	summary.WhiteBest = BestMoves(moves, record.White, criticalMoveCount)
	summary.BlackWorst = WorstMoves(moves, record.Black, criticalMoveCount)
	summary.BlackBest = BestMoves(moves, record.Black, criticalMoveCount)

	summary.Evaluations = EvalTimeline(moves)
	summary.Highlights = b.detector.Detect(moves, totalMoves, openingEnd, middlegameEnd)
	return summary
}

// endgameLabel scans the endgame phase for the most specific classification.
// The generic catch-all label only stands when no later position matches a
// specific rule; a specific label is never downgraded.
func endgameLabel(moves []record.MoveRecord, totalMoves, middlegameEnd int) EndgameType {
	if middlegameEnd > totalMoves {
		return ""
	}
	var label EndgameType
	for i := range moves {
		if moves[i].MoveNumber < middlegameEnd {
			continue
		}
		t, ok := ClassifyEndgame(&moves[i])
		if !ok {
			continue
		}
		if moreSpecific(label, t) {
			label = t
		}
	}
	return label
}
