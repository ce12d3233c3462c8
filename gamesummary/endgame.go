package gamesummary

import "github.com/carachess/profiler/record"

// EndgameType labels the material configuration of an endgame position.
type EndgameType string

const (
	EndgamePawn              EndgameType = "Pawn"
	EndgameMinorPiece        EndgameType = "Minor Piece"
	EndgameTwoMinorPiece     EndgameType = "Two Minor Piece"
	EndgameRookTwoMinor      EndgameType = "Rook + Two Minor Piece"
	EndgameRookUnequalMinors EndgameType = "Rook vs Rook (Unequal Minors)"
	EndgameRookVsMinor       EndgameType = "Rook vs Minor Piece"
	EndgameRook              EndgameType = "Rook"
	EndgameDoubleRook        EndgameType = "Double Rook"
	EndgameRookMinor         EndgameType = "Rook + Minor Piece"
	EndgameHeavyPiece        EndgameType = "Heavy Piece"
	EndgameAsymmetricHeavy   EndgameType = "Asymmetric Heavy Piece"
	EndgameQueen             EndgameType = "Queen"
	EndgameQueenTwoMinor     EndgameType = "Queen + Two Minor Piece"
	EndgameStrongImbalance   EndgameType = "Strong Material Imbalance"
	EndgameTransitional      EndgameType = "Transitional"
	EndgameGeneric           EndgameType = "Endgame"
)

// ClassifyEndgame classifies the position after the given move as an endgame
// type, or returns false when the position is still a middlegame.
//
// The rules form an ordered, first-match cascade: specific material patterns
// are tested before broader ones, and the material-threshold catch-all runs
// last. Reordering the rules changes results on positions matched by more
// than one rule.
func ClassifyEndgame(m *record.MoveRecord) (EndgameType, bool) {
	w := m.WhitePieces
	b := m.BlackPieces

	wPoints := w.NonPawnPoints()
	bPoints := b.NonPawnPoints()
	wMinors := w.Minors()
	bMinors := b.Minors()

	// Pawn-only endgame.
	if w.Queens == 0 && w.Rooks == 0 && wMinors == 0 &&
		b.Queens == 0 && b.Rooks == 0 && bMinors == 0 {
		return EndgamePawn, true
	}

	// Minor-piece endgame: no heavy pieces, at most one minor per side.
	if w.Queens == 0 && w.Rooks == 0 && b.Queens == 0 && b.Rooks == 0 &&
		wMinors <= 1 && bMinors <= 1 &&
		wPoints <= 6 && bPoints <= 6 {
		return EndgameMinorPiece, true
	}

	// Two minors against two minors, no heavy pieces.
	if w.Queens == 0 && w.Rooks == 0 && b.Queens == 0 && b.Rooks == 0 &&
		wMinors == 2 && bMinors == 2 &&
		wPoints <= 6 && bPoints <= 6 {
		return EndgameTwoMinorPiece, true
	}

	// Rook plus two minors per side.
	if w.Queens == 0 && b.Queens == 0 && w.Rooks == 1 && b.Rooks == 1 &&
		wMinors == 2 && bMinors == 2 &&
		wPoints <= 11 && bPoints <= 11 {
		return EndgameRookTwoMinor, true
	}

	// Rook each, two minors against one.
	if w.Queens == 0 && b.Queens == 0 && w.Rooks == 1 && b.Rooks == 1 {
		if wMinors == 2 && bMinors == 1 && wPoints <= 14 && bPoints <= 10 {
			return EndgameRookUnequalMinors, true
		}
		if wMinors == 1 && bMinors == 2 && wPoints <= 10 && bPoints <= 14 {
			return EndgameRookUnequalMinors, true
		}
	}

	// Lone rook against a lone minor.
	if w.Queens == 0 && b.Queens == 0 &&
		((w.Rooks == 1 && b.Rooks == 0 && bMinors == 1 && wMinors == 0) ||
			(b.Rooks == 1 && w.Rooks == 0 && wMinors == 1 && bMinors == 0)) &&
		wPoints <= 8 && bPoints <= 8 {
		return EndgameRookVsMinor, true
	}

	// Rook endgame.
	if w.Queens == 0 && b.Queens == 0 && (w.Rooks > 0 || b.Rooks > 0) &&
		wMinors <= 1 && bMinors <= 1 &&
		wPoints <= 10 && bPoints <= 10 {
		return EndgameRook, true
	}

	// Double-rook endgame.
	if w.Queens == 0 && b.Queens == 0 && w.Rooks == 2 && b.Rooks == 2 &&
		wMinors <= 1 && bMinors <= 1 &&
		wPoints <= 15 && bPoints <= 15 {
		return EndgameDoubleRook, true
	}

	// Rook plus minor.
	if w.Queens == 0 && b.Queens == 0 && (w.Rooks > 0 || b.Rooks > 0) &&
		wMinors <= 1 && bMinors <= 1 &&
		wPoints <= 13 && bPoints <= 13 {
		return EndgameRookMinor, true
	}

	// Heavy-piece endgame, symmetric minors.
	if w.Queens > 0 && b.Queens > 0 && w.Rooks > 0 && b.Rooks > 0 &&
		wMinors <= 1 && bMinors <= 1 && wMinors == bMinors &&
		wPoints <= 15 && bPoints <= 15 {
		return EndgameHeavyPiece, true
	}

	// Asymmetric heavy-piece endgame. Thresholds depend on each side's
	// composition: queen only <=12, queen+rook <=14, queen+rook+minor <=17.
	if w.Queens > 0 && b.Queens > 0 && wMinors <= 1 && bMinors <= 1 {
		if w.Rooks > 0 && b.Rooks > 0 &&
			((wMinors == 0 && bMinors <= 1) || (bMinors == 0 && wMinors <= 1)) {
			wOK := (wMinors == 0 && wPoints <= 14) || (wMinors <= 1 && wPoints <= 17)
			bOK := (bMinors == 0 && bPoints <= 14) || (bMinors <= 1 && bPoints <= 17)
			if wOK && bOK {
				return EndgameAsymmetricHeavy, true
			}
		} else if (w.Rooks > 0 && b.Rooks == 0) || (w.Rooks == 0 && b.Rooks > 0) {
			var wOK, bOK bool
			if w.Rooks == 0 {
				wOK = wPoints <= 12
			} else {
				wOK = (wMinors == 0 && wPoints <= 14) || (wMinors <= 1 && wPoints <= 17)
			}
			if b.Rooks == 0 {
				bOK = bPoints <= 12
			} else {
				bOK = (bMinors == 0 && bPoints <= 14) || (bMinors <= 1 && bPoints <= 17)
			}
			if wOK && bOK {
				return EndgameAsymmetricHeavy, true
			}
		}
	}

	// Queen endgame.
	if (w.Queens > 0 || b.Queens > 0) && w.Rooks == 0 && b.Rooks == 0 &&
		wMinors <= 1 && bMinors <= 1 &&
		wPoints <= 12 && bPoints <= 12 {
		return EndgameQueen, true
	}

	// Queen plus two minors per side.
	if w.Queens > 0 && b.Queens > 0 && w.Rooks == 0 && b.Rooks == 0 &&
		wMinors == 2 && bMinors == 2 &&
		wPoints <= 15 && bPoints <= 15 {
		return EndgameQueenTwoMinor, true
	}

	// One side nearly out of material against moderate material.
	if (wPoints <= 8 && bPoints <= 30) || (bPoints <= 8 && wPoints <= 30) {
		return EndgameStrongImbalance, true
	}

	// Material-threshold catch-all. A remaining queen marks the position as
	// transitional rather than a settled endgame.
	if wPoints <= 15 && bPoints <= 15 {
		if w.Queens > 0 || b.Queens > 0 {
			return EndgameTransitional, true
		}
		return EndgameGeneric, true
	}

	return "", false
}

// moreSpecific reports whether candidate should replace current as the
// game's endgame label. Only the generic catch-all is ever upgraded.
func moreSpecific(current, candidate EndgameType) bool {
	if current == "" {
		return true
	}
	return current == EndgameGeneric && candidate != EndgameGeneric
}
