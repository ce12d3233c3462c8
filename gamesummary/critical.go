package gamesummary

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/carachess/profiler/record"
)

func collectCritical(moves []record.MoveRecord, side record.Side, skipBook bool) []CriticalMove {
	var out []CriticalMove
	for i := range moves {
		m := &moves[i]
		moveStr := m.Move(side)
		if moveStr == "" {
			continue
		}
		assessment := m.Assessment(side)
		if skipBook && assessment == record.AssessBook {
			continue
		}
		cpl, ok := record.ParseCPL(m.CPL(side))
		if !ok {
			continue
		}
		out = append(out, CriticalMove{
			MoveNumber: m.MoveNumber,
			Notation:   fmt.Sprintf("%d. %s", m.MoveNumber, moveStr),
			CPL:        cpl,
			Assessment: assessment,
			Evaluation: m.Eval(side),
			BestMove:   m.Best(side),
		})
	}
	return out
}

// WorstMoves returns the player's n highest-loss moves, worst first. Book
// moves are included when they carry a centipawn loss.
func WorstMoves(moves []record.MoveRecord, side record.Side, n int) []CriticalMove {
	candidates := collectCritical(moves, side, false)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CPL > candidates[j].CPL
	})
	return lo.Slice(candidates, 0, n)
}

// BestMoves returns the player's n strongest moves, excluding book theory.
// Brilliant moves rank ahead of everything else; within each group moves
// order by ascending loss.
func BestMoves(moves []record.MoveRecord, side record.Side, n int) []CriticalMove {
	candidates := collectCritical(moves, side, true)
	brilliant, others := lo.FilterReject(candidates, func(c CriticalMove, _ int) bool {
		return c.Assessment == record.AssessBrilliant
	})
	sort.SliceStable(brilliant, func(i, j int) bool { return brilliant[i].CPL < brilliant[j].CPL })
	sort.SliceStable(others, func(i, j int) bool { return others[i].CPL < others[j].CPL })
	return lo.Slice(append(brilliant, others...), 0, n)
}
