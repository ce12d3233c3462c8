// Package highlights detects narrative highlights (key moments and facts) in
// an analyzed game. The summary builder consumes it through the Detector
// interface; NewRuleDetector returns the built-in rule-registry
// implementation.
package highlights

import (
	"fmt"

	"github.com/carachess/profiler/record"
)

// Highlight is one detected key moment or fact.
type Highlight struct {
	// MoveNumber is the primary move number; for multi-move highlights it is
	// the first move of the range.
	MoveNumber    int
	EndMoveNumber int
	White         bool
	Notation      string
	Description   string
	// Priority orders highlights within a phase; higher is more interesting.
	Priority int
	// RuleType identifies the producing rule, for deduplication.
	RuleType string
}

// Detector finds highlights in a game's move records.
type Detector interface {
	Detect(moves []record.MoveRecord, totalMoves, openingEnd, middlegameEnd int) []Highlight
}

// notation formats a move for display, e.g. "23. Qd4" or "23... Nf6".
func notation(moveNumber int, side record.Side, moveText string) string {
	if side == record.White {
		return fmt.Sprintf("%d. %s", moveNumber, moveText)
	}
	return fmt.Sprintf("%d... %s", moveNumber, moveText)
}

func phaseOf(moveNumber, openingEnd, middlegameEnd int) string {
	switch {
	case moveNumber <= openingEnd:
		return "opening"
	case moveNumber < middlegameEnd:
		return "middlegame"
	default:
		return "endgame"
	}
}
