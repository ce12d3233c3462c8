package gamesummary

import "github.com/carachess/profiler/record"

// EvalTimeline maps a game's evaluations onto a ply axis for graphing.
// Ply 0 is the start position at 0.0; white's move n lands on ply 2n-1 and
// black's on ply 2n. Unparseable evaluations are skipped.
func EvalTimeline(moves []record.MoveRecord) []EvalPoint {
	points := []EvalPoint{{Ply: 0, CP: 0.0}}
	for i := range moves {
		m := &moves[i]
		if cp, ok := record.ParseEvaluation(m.EvalWhite); ok {
			points = append(points, EvalPoint{Ply: m.MoveNumber*2 - 1, CP: cp})
		}
		if cp, ok := record.ParseEvaluation(m.EvalBlack); ok {
			points = append(points, EvalPoint{Ply: m.MoveNumber * 2, CP: cp})
		}
	}
	return points
}
