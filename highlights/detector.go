package highlights

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/carachess/profiler/record"
)

// RuleDetector evaluates a registry of rules over every move and keeps the
// highest-priority highlights, capped per phase.
type RuleDetector struct {
	rules         []Rule
	perPhaseLimit int
}

// NewRuleDetector returns a detector with the built-in rule set.
func NewRuleDetector(perPhaseLimit int) *RuleDetector {
	if perPhaseLimit <= 0 {
		perPhaseLimit = 7
	}
	return &RuleDetector{
		rules: []Rule{
			theoryDepartureRule{},
			castlingRule{},
			brilliantMoveRule{},
			missedWinRule{},
			evaluationSwingRule{},
			materialImbalanceRule{},
		},
		perPhaseLimit: perPhaseLimit,
	}
}

// Detect runs every rule over every move and returns the surviving
// highlights in move order.
func (d *RuleDetector) Detect(moves []record.MoveRecord, totalMoves, openingEnd, middlegameEnd int) []Highlight {
	if len(moves) == 0 {
		return nil
	}

	lastBook := 0
	for _, m := range moves {
		if m.AssessWhite == record.AssessBook || m.AssessBlack == record.AssessBook {
			lastBook = m.MoveNumber
		}
	}

	ctx := &Context{
		TotalMoves:    totalMoves,
		OpeningEnd:    openingEnd,
		MiddlegameEnd: middlegameEnd,
		Moves:         moves,
		LastBookMove:  lastBook,
	}

	var all []Highlight
	for i := range moves {
		m := &moves[i]
		ctx.Index = i
		if i > 0 {
			ctx.Prev = &moves[i-1]
		}
		for _, rule := range d.rules {
			all = append(all, rule.Evaluate(m, ctx)...)
		}
		// Advance the running evaluation past both plies of this move.
		for _, side := range []record.Side{record.White, record.Black} {
			if m.Move(side) == "" {
				continue
			}
			if v, ok := record.ParseEvaluation(m.Eval(side)); ok {
				ctx.prevEval = v
				ctx.hasPrevEval = true
			}
		}
	}

	kept := d.limitPerPhase(all, openingEnd, middlegameEnd)
	log.Debug().Int("candidates", len(all)).Int("kept", len(kept)).
		Msg("highlight detection done")
	return kept
}

func (d *RuleDetector) limitPerPhase(all []Highlight, openingEnd, middlegameEnd int) []Highlight {
	byPhase := map[string][]Highlight{}
	for _, h := range all {
		phase := phaseOf(h.MoveNumber, openingEnd, middlegameEnd)
		byPhase[phase] = append(byPhase[phase], h)
	}

	var kept []Highlight
	for _, hs := range byPhase {
		sort.SliceStable(hs, func(i, j int) bool {
			return hs[i].Priority > hs[j].Priority
		})
		if len(hs) > d.perPhaseLimit {
			hs = hs[:d.perPhaseLimit]
		}
		kept = append(kept, hs...)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].MoveNumber != kept[j].MoveNumber {
			return kept[i].MoveNumber < kept[j].MoveNumber
		}
		return kept[i].White && !kept[j].White
	})
	return kept
}
