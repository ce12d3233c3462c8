// Package gamesummary computes the statistical profile of a single analyzed
// game: phase boundaries, endgame classification, per-player move statistics,
// critical moves, the evaluation timeline and narrative highlights.
package gamesummary

import "github.com/carachess/profiler/highlights"

// Phase identifies a segment of the game.
type Phase int

const (
	PhaseOpening Phase = iota
	PhaseMiddlegame
	PhaseEndgame
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseMiddlegame:
		return "middlegame"
	case PhaseEndgame:
		return "endgame"
	default:
		return "unknown"
	}
}

// PlayerStatistics contains one side's move-quality profile for a game, or
// for a pooled move list during aggregation.
type PlayerStatistics struct {
	TotalMoves int
	// NonBookMoves counts every assessed move except book moves.
	NonBookMoves   int
	BookMoves      int
	BrilliantMoves int
	BestMoves      int
	GoodMoves      int
	Inaccuracies   int
	Mistakes       int
	Misses         int
	Blunders       int
	// Top3Moves counts non-book moves that matched one of the engine's
	// top three choices.
	Top3Moves int

	// AverageCPL is computed over per-value capped losses (500cp cap);
	// median/min/max use the uncapped values.
	AverageCPL float64
	MedianCPL  float64
	MinCPL     float64
	MaxCPL     float64

	Accuracy     float64
	EstimatedElo int

	BestMovePct float64
	Top3MovePct float64
	BlunderRate float64
}

// PhaseStatistics restricts the classification counts and CPL mean to one
// phase.
type PhaseStatistics struct {
	Moves          int
	AverageCPL     float64
	Accuracy       float64
	BookMoves      int
	BrilliantMoves int
	BestMoves      int
	GoodMoves      int
	Inaccuracies   int
	Mistakes       int
	Misses         int
	Blunders       int
}

// PhaseSet is one side's per-phase statistics triple.
type PhaseSet struct {
	Opening    PhaseStatistics
	Middlegame PhaseStatistics
	Endgame    PhaseStatistics
}

// ByPhase returns the statistics for the given phase.
func (s *PhaseSet) ByPhase(p Phase) PhaseStatistics {
	switch p {
	case PhaseOpening:
		return s.Opening
	case PhaseMiddlegame:
		return s.Middlegame
	default:
		return s.Endgame
	}
}

// CriticalMove is one entry of a side's worst- or best-move list.
type CriticalMove struct {
	MoveNumber int
	Notation   string
	CPL        float64
	Assessment string
	Evaluation string
	BestMove   string
}

// EvalPoint is one point of the evaluation timeline. Ply 0 is the start
// position with evaluation 0.
type EvalPoint struct {
	Ply int
	CP  float64
}

// GameSummary is the complete statistical profile of one game.
type GameSummary struct {
	WhiteStats PlayerStatistics
	BlackStats PlayerStatistics

	WhitePhases PhaseSet
	BlackPhases PhaseSet

	WhiteWorst []CriticalMove
	WhiteBest  []CriticalMove
	BlackWorst []CriticalMove
	BlackBest  []CriticalMove

	Evaluations []EvalPoint

	OpeningEnd    int
	MiddlegameEnd int

	// EndgameType is empty when the game never reached an endgame.
	EndgameType EndgameType

	Highlights []highlights.Highlight
}
