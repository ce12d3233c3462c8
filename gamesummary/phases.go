package gamesummary

import (
	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/record"
)

// nonPawnCaptures are the capture codes that end the opening.
var nonPawnCaptures = map[string]bool{"r": true, "n": true, "b": true, "q": true}

// PhaseBoundaries computes the move numbers at which the opening and the
// middlegame end. Boundaries are a game-level concept shared by both players.
//
// The opening ends at whichever comes later: the move after the last book
// move, or the first non-pawn capture. When no non-pawn capture occurs the
// configured opening move threshold is used instead. The middlegame ends at
// the first move whose position classifies as an endgame; if none does,
// middlegameEnd is totalMoves+1 and the game has no endgame phase.
func PhaseBoundaries(cfg *config.Config, moves []record.MoveRecord, totalMoves int) (openingEnd, middlegameEnd int) {
	lastBook := 0
	firstNonPawnCapture := 0

	for i := range moves {
		m := &moves[i]
		if m.WhiteMove != "" && m.AssessWhite == record.AssessBook {
			lastBook = max(lastBook, m.MoveNumber)
		}
		if m.BlackMove != "" && m.AssessBlack == record.AssessBook {
			lastBook = max(lastBook, m.MoveNumber)
		}
		if firstNonPawnCapture == 0 && nonPawnCaptures[m.WhiteCapture] {
			firstNonPawnCapture = m.MoveNumber
		}
		if firstNonPawnCapture == 0 && nonPawnCaptures[m.BlackCapture] {
			firstNonPawnCapture = m.MoveNumber
		}
	}

	if firstNonPawnCapture > 0 {
		openingEnd = max(lastBook+1, firstNonPawnCapture)
	} else {
		openingEnd = cfg.OpeningMoves
	}

	middlegameEnd = totalMoves + 1
	for i := range moves {
		if _, ok := ClassifyEndgame(&moves[i]); ok {
			middlegameEnd = moves[i].MoveNumber
			break
		}
	}
	return openingEnd, middlegameEnd
}

// PhaseOf places a move number into a phase given the computed boundaries.
func PhaseOf(moveNumber, openingEnd, middlegameEnd int) Phase {
	switch {
	case moveNumber <= openingEnd:
		return PhaseOpening
	case moveNumber < middlegameEnd:
		return PhaseMiddlegame
	default:
		return PhaseEndgame
	}
}
