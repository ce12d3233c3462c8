package highlights

import (
	"fmt"
	"math"
	"strings"

	"github.com/carachess/profiler/record"
)

// Context carries the cross-move state a rule may need while evaluating one
// move record.
type Context struct {
	Index         int
	TotalMoves    int
	OpeningEnd    int
	MiddlegameEnd int
	Moves         []record.MoveRecord
	Prev          *record.MoveRecord
	LastBookMove  int

	// prevEval is the last parseable evaluation seen before the current ply,
	// maintained by the detector as it walks the plies in order.
	prevEval    float64
	hasPrevEval bool
}

// Rule evaluates one move record in context and returns any highlights.
type Rule interface {
	Name() string
	Evaluate(m *record.MoveRecord, ctx *Context) []Highlight
}

// evalSwingThreshold is the minimum centipawn swing worth reporting.
const evalSwingThreshold = 200.0

// theoryDepartureRule fires on the first move past the last book move.
type theoryDepartureRule struct{}

func (theoryDepartureRule) Name() string { return "theory_departure" }

func (theoryDepartureRule) Evaluate(m *record.MoveRecord, ctx *Context) []Highlight {
	if ctx.LastBookMove == 0 || m.MoveNumber != ctx.LastBookMove+1 {
		return nil
	}
	side := record.White
	text := m.Move(side)
	if text == "" {
		side = record.Black
		text = m.Move(side)
	}
	if text == "" {
		return nil
	}
	return []Highlight{{
		MoveNumber:  m.MoveNumber,
		White:       side == record.White,
		Notation:    notation(m.MoveNumber, side, text),
		Description: "Game departed from known theory",
		Priority:    1,
		RuleType:    "theory_departure",
	}}
}

// castlingRule reports each side's castling move.
type castlingRule struct{}

func (castlingRule) Name() string { return "castling" }

func (castlingRule) Evaluate(m *record.MoveRecord, ctx *Context) []Highlight {
	var out []Highlight
	for _, side := range []record.Side{record.White, record.Black} {
		text := m.Move(side)
		if !strings.HasPrefix(text, "O-O") {
			continue
		}
		wing := "kingside"
		if strings.HasPrefix(text, "O-O-O") {
			wing = "queenside"
		}
		out = append(out, Highlight{
			MoveNumber:  m.MoveNumber,
			White:       side == record.White,
			Notation:    notation(m.MoveNumber, side, text),
			Description: fmt.Sprintf("%s castled %s", side, wing),
			Priority:    1,
			RuleType:    "castling",
		})
	}
	return out
}

// brilliantMoveRule reports moves the engine assessed as brilliant.
type brilliantMoveRule struct{}

func (brilliantMoveRule) Name() string { return "brilliant_move" }

func (brilliantMoveRule) Evaluate(m *record.MoveRecord, ctx *Context) []Highlight {
	var out []Highlight
	for _, side := range []record.Side{record.White, record.Black} {
		if m.Assessment(side) != record.AssessBrilliant || m.Move(side) == "" {
			continue
		}
		out = append(out, Highlight{
			MoveNumber:  m.MoveNumber,
			White:       side == record.White,
			Notation:    notation(m.MoveNumber, side, m.Move(side)),
			Description: fmt.Sprintf("%s found a brilliant move", side),
			Priority:    4,
			RuleType:    "brilliant_move",
		})
	}
	return out
}

// missedWinRule reports moves assessed as a miss while the mover stood
// winning.
type missedWinRule struct{}

func (missedWinRule) Name() string { return "missed_win" }

func (missedWinRule) Evaluate(m *record.MoveRecord, ctx *Context) []Highlight {
	var out []Highlight
	for _, side := range []record.Side{record.White, record.Black} {
		if m.Assessment(side) != record.AssessMiss || m.Move(side) == "" {
			continue
		}
		out = append(out, Highlight{
			MoveNumber:  m.MoveNumber,
			White:       side == record.White,
			Notation:    notation(m.MoveNumber, side, m.Move(side)),
			Description: fmt.Sprintf("%s missed a stronger continuation", side),
			Priority:    3,
			RuleType:    "missed_win",
		})
	}
	return out
}

// evaluationSwingRule reports large evaluation swings attributed to the ply
// that caused them.
type evaluationSwingRule struct{}

func (evaluationSwingRule) Name() string { return "evaluation_swing" }

func (evaluationSwingRule) Evaluate(m *record.MoveRecord, ctx *Context) []Highlight {
	var out []Highlight
	prev := ctx.prevEval
	hasPrev := ctx.hasPrevEval
	for _, side := range []record.Side{record.White, record.Black} {
		if m.Move(side) == "" {
			continue
		}
		cur, ok := record.ParseEvaluation(m.Eval(side))
		if !ok {
			continue
		}
		if hasPrev {
			delta := cur - prev
			if math.Abs(delta) >= evalSwingThreshold {
				// A drop hurts White, a rise hurts Black; attribute the swing
				// to whoever just moved.
				desc := fmt.Sprintf("Evaluation swung by %.0f centipawns after %s's move", math.Abs(delta), side)
				out = append(out, Highlight{
					MoveNumber:  m.MoveNumber,
					White:       side == record.White,
					Notation:    notation(m.MoveNumber, side, m.Move(side)),
					Description: desc,
					Priority:    3,
					RuleType:    "evaluation_swing",
				})
			}
		}
		prev, hasPrev = cur, true
	}
	return out
}

// materialImbalanceRule reports the first move at which the non-pawn material
// balance tips by three or more points.
type materialImbalanceRule struct{}

func (materialImbalanceRule) Name() string { return "material_imbalance" }

func (materialImbalanceRule) Evaluate(m *record.MoveRecord, ctx *Context) []Highlight {
	diff := m.WhitePieces.NonPawnPoints() - m.BlackPieces.NonPawnPoints()
	if ctx.Prev != nil {
		prevDiff := ctx.Prev.WhitePieces.NonPawnPoints() - ctx.Prev.BlackPieces.NonPawnPoints()
		if intAbs(prevDiff) >= 3 {
			return nil
		}
	}
	if intAbs(diff) < 3 {
		return nil
	}
	side := record.White
	if diff < 0 {
		side = record.Black
	}
	text := m.Move(side)
	if text == "" {
		text = m.Move(side.Opposite())
	}
	return []Highlight{{
		MoveNumber:  m.MoveNumber,
		White:       side == record.White,
		Notation:    notation(m.MoveNumber, side, text),
		Description: fmt.Sprintf("%s won material", side),
		Priority:    2,
		RuleType:    "material_imbalance",
	}}
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
