// Package record holds the per-ply analysis records the profiling engine
// consumes, along with the game handles they are decoded from.
package record

// Side identifies which player a per-ply field belongs to.
type Side int

const (
	White Side = iota
	Black
)

// String returns a string representation of the side.
func (s Side) String() string {
	if s == White {
		return "White"
	}
	return "Black"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == White {
		return Black
	}
	return White
}

// Assessment labels attached to a move by the analysis pipeline.
const (
	AssessBook       = "Book Move"
	AssessBrilliant  = "Brilliant"
	AssessBest       = "Best Move"
	AssessGood       = "Good Move"
	AssessInaccuracy = "Inaccuracy"
	AssessMistake    = "Mistake"
	AssessMiss       = "Miss"
	AssessBlunder    = "Blunder"
)

// PieceCounts is the material remaining for one side after a move.
type PieceCounts struct {
	Queens  int `json:"queens"`
	Rooks   int `json:"rooks"`
	Bishops int `json:"bishops"`
	Knights int `json:"knights"`
	Pawns   int `json:"pawns"`
}

// NonPawnPoints returns the non-pawn material in points (Q=9, R=5, B=3, N=3).
func (p PieceCounts) NonPawnPoints() int {
	return p.Queens*9 + p.Rooks*5 + p.Bishops*3 + p.Knights*3
}

// Minors returns the number of minor pieces (bishops + knights).
func (p PieceCounts) Minors() int {
	return p.Bishops + p.Knights
}

// MoveRecord is one full move (both plies) of already-decoded analysis data.
// CPL and evaluation fields are kept as strings: the decoding collaborator
// passes engine output through verbatim, and unparseable values are skipped
// at the point of use rather than rejected up front.
type MoveRecord struct {
	MoveNumber int `json:"move_number"`

	WhiteMove string `json:"white_move,omitempty"`
	BlackMove string `json:"black_move,omitempty"`

	EvalWhite string `json:"eval_white,omitempty"`
	EvalBlack string `json:"eval_black,omitempty"`

	CPLWhite string `json:"cpl_white,omitempty"`
	CPLBlack string `json:"cpl_black,omitempty"`

	AssessWhite string `json:"assess_white,omitempty"`
	AssessBlack string `json:"assess_black,omitempty"`

	BestWhite string `json:"best_white,omitempty"`
	BestBlack string `json:"best_black,omitempty"`

	WhiteIsTop3 bool `json:"white_is_top3,omitempty"`
	BlackIsTop3 bool `json:"black_is_top3,omitempty"`

	// Captured piece letter (p, r, n, b, q) or empty when the move is quiet.
	WhiteCapture string `json:"white_capture,omitempty"`
	BlackCapture string `json:"black_capture,omitempty"`

	WhitePieces PieceCounts `json:"white_pieces"`
	BlackPieces PieceCounts `json:"black_pieces"`

	// Opening tag for this position. The name repeats as OpeningRepeat once
	// set, until the line transposes into a different book position.
	ECO         string `json:"eco,omitempty"`
	OpeningName string `json:"opening_name,omitempty"`
}

// OpeningRepeat is the sentinel opening-name marker meaning "unchanged since
// the previous tagged position".
const OpeningRepeat = "*"

// Move returns the move text for the given side.
func (m *MoveRecord) Move(s Side) string {
	if s == White {
		return m.WhiteMove
	}
	return m.BlackMove
}

// CPL returns the raw centipawn-loss string for the given side.
func (m *MoveRecord) CPL(s Side) string {
	if s == White {
		return m.CPLWhite
	}
	return m.CPLBlack
}

// Assessment returns the assessment label for the given side.
func (m *MoveRecord) Assessment(s Side) string {
	if s == White {
		return m.AssessWhite
	}
	return m.AssessBlack
}

// Eval returns the raw evaluation string for the given side.
func (m *MoveRecord) Eval(s Side) string {
	if s == White {
		return m.EvalWhite
	}
	return m.EvalBlack
}

// Best returns the engine's best-alternative move text for the given side.
func (m *MoveRecord) Best(s Side) string {
	if s == White {
		return m.BestWhite
	}
	return m.BestBlack
}

// IsTop3 reports whether the side's played move was among the engine's top 3.
func (m *MoveRecord) IsTop3(s Side) bool {
	if s == White {
		return m.WhiteIsTop3
	}
	return m.BlackIsTop3
}

// Capture returns the captured piece letter for the given side.
func (m *MoveRecord) Capture(s Side) string {
	if s == White {
		return m.WhiteCapture
	}
	return m.BlackCapture
}

// Pieces returns the piece counts for the given side.
func (m *MoveRecord) Pieces(s Side) PieceCounts {
	if s == White {
		return m.WhitePieces
	}
	return m.BlackPieces
}
