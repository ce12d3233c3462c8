// Package errorpattern mines a player's aggregated statistics and per-game
// summaries for recurring weaknesses.
package errorpattern

import (
	"fmt"
	"sort"

	"github.com/carachess/profiler/aggregate"
	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/gamesummary"
	"github.com/carachess/profiler/record"
)

// Severity tiers a pattern by how pronounced it is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityFor maps a computed percentage onto a tier using the pattern's
// [moderate, high, critical] cut points.
func severityFor(value float64, cuts config.SeverityCuts) Severity {
	switch {
	case value >= cuts[2]:
		return SeverityCritical
	case value >= cuts[1]:
		return SeverityHigh
	case value >= cuts[0]:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// Pattern is one detected recurring weakness.
type Pattern struct {
	// Type tags the detector that produced the pattern, e.g.
	// "phase_blunders" or "conversion_issues".
	Type        string
	Description string
	// Frequency counts occurrences; its unit depends on the pattern type
	// (blunders, games, moves).
	Frequency  int
	Percentage float64
	Severity   Severity
	// Games lists the games exhibiting the pattern. Empty for patterns
	// derived purely from aggregate counts.
	Games []*record.GameData
}

// Detector runs the pattern heuristics. Each sub-detector is independent
// and skips itself when its inputs are absent.
type Detector struct {
	cfg *config.ErrorPatternConfig
}

// New returns a Detector using the given thresholds.
func New(cfg *config.ErrorPatternConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs every sub-detector and returns the ranked patterns. games and
// summaries are parallel slices as returned by the aggregator; nil summary
// entries (skipped games) are ignored. Patterns without associated games
// sort first; within each group patterns order by descending percentage.
func (d *Detector) Detect(player string, games []record.GameData, agg *aggregate.AggregatedPlayerStats, summaries []*gamesummary.GameSummary) []Pattern {
	if agg == nil || len(games) == 0 || len(summaries) == 0 {
		return nil
	}

	var patterns []Pattern
	patterns = append(patterns, d.phaseBlunders(player, games, agg, summaries)...)
	patterns = append(patterns, d.openingErrors(player, games, summaries)...)
	patterns = append(patterns, d.highCPL(player, games, agg, summaries)...)
	patterns = append(patterns, d.missedTop3(agg)...)
	patterns = append(patterns, d.conversionIssues(player, games, summaries)...)
	patterns = append(patterns, d.defensiveWeaknesses(player, games, summaries)...)
	patterns = append(patterns, d.consistentInaccuracies(agg)...)

	sort.SliceStable(patterns, func(i, j int) bool {
		iHasGames := len(patterns[i].Games) > 0
		jHasGames := len(patterns[j].Games) > 0
		if iHasGames != jHasGames {
			return !iHasGames
		}
		return patterns[i].Percentage > patterns[j].Percentage
	})
	return patterns
}

// phaseBlunders reports the phase holding the largest share of the player's
// blunders, when that share clears the configured threshold.
func (d *Detector) phaseBlunders(player string, games []record.GameData, agg *aggregate.AggregatedPlayerStats, summaries []*gamesummary.GameSummary) []Pattern {
	total := agg.PlayerStats.Blunders
	if total == 0 {
		return nil
	}

	worstPhase := gamesummary.PhaseOpening
	worstCount := agg.Phases.Opening.Blunders
	if agg.Phases.Middlegame.Blunders > worstCount {
		worstPhase, worstCount = gamesummary.PhaseMiddlegame, agg.Phases.Middlegame.Blunders
	}
	if agg.Phases.Endgame.Blunders > worstCount {
		worstPhase, worstCount = gamesummary.PhaseEndgame, agg.Phases.Endgame.Blunders
	}
	if worstCount == 0 {
		return nil
	}

	pct := float64(worstCount) / float64(total) * 100
	if pct < d.cfg.PhaseBlunderPct {
		return nil
	}

	var related []*record.GameData
	for i := range games {
		if i >= len(summaries) || summaries[i] == nil {
			continue
		}
		side, ok := games[i].SideOf(player)
		if !ok {
			continue
		}
		phases := phasesFor(summaries[i], side)
		if phases.ByPhase(worstPhase).Blunders > 0 {
			related = append(related, &games[i])
		}
	}

	return []Pattern{{
		Type:        "phase_blunders",
		Description: fmt.Sprintf("Frequent blunders in %s (%.1f%% of blunders)", worstPhase, pct),
		Frequency:   worstCount,
		Percentage:  pct,
		Severity:    severityFor(pct, d.cfg.PhaseBlunderSeverity),
		Games:       related,
	}}
}

// openingErrorMinMoves is the smallest per-opening sample that produces a
// meaningful error rate.
const openingErrorMinMoves = 10

// openingErrors groups games by ECO and flags openings whose combined
// inaccuracy+mistake+blunder rate clears the threshold.
func (d *Detector) openingErrors(player string, games []record.GameData, summaries []*gamesummary.GameSummary) []Pattern {
	type ecoAcc struct {
		games    []*record.GameData
		moves    int
		errors   int
		name     string
		firstIdx int
	}
	byECO := map[string]*ecoAcc{}
	var order []string

	for i := range games {
		if i >= len(summaries) || summaries[i] == nil {
			continue
		}
		game := &games[i]
		side, ok := game.SideOf(player)
		if !ok {
			continue
		}
		moves, err := game.DecodeAnalysis()
		if err != nil || len(moves) == 0 {
			continue
		}

		eco, name := openingOf(game, moves)
		acc, ok := byECO[eco]
		if !ok {
			acc = &ecoAcc{firstIdx: i}
			byECO[eco] = acc
			order = append(order, eco)
		}
		acc.games = append(acc.games, game)
		if acc.name == "" {
			acc.name = name
		}

		phases := phasesFor(summaries[i], side)
		acc.moves += phases.Opening.Moves
		acc.errors += phases.Opening.Inaccuracies + phases.Opening.Mistakes + phases.Opening.Blunders
	}

	var patterns []Pattern
	for _, eco := range order {
		acc := byECO[eco]
		if acc.moves < openingErrorMinMoves {
			continue
		}
		rate := float64(acc.errors) / float64(acc.moves) * 100
		if rate < d.cfg.OpeningErrorRate {
			continue
		}
		desc := fmt.Sprintf("High error rate in %s (%.1f%% of moves)", eco, rate)
		if acc.name != "" && eco != "Unknown" {
			desc = fmt.Sprintf("High error rate in %s (%s) (%.1f%% of moves)", eco, acc.name, rate)
		}
		patterns = append(patterns, Pattern{
			Type:        "opening_errors",
			Description: desc,
			Frequency:   acc.errors,
			Percentage:  rate,
			Severity:    severityFor(rate, d.cfg.OpeningErrorSeverity),
			Games:       acc.games,
		})
	}
	return patterns
}

// highCPL flags a consistently high average centipawn loss, listing the
// games whose own average also clears the threshold.
func (d *Detector) highCPL(player string, games []record.GameData, agg *aggregate.AggregatedPlayerStats, summaries []*gamesummary.GameSummary) []Pattern {
	avg := agg.PlayerStats.AverageCPL
	if avg < d.cfg.HighCPL {
		return nil
	}

	var related []*record.GameData
	for i := range games {
		if i >= len(summaries) || summaries[i] == nil {
			continue
		}
		side, ok := games[i].SideOf(player)
		if !ok {
			continue
		}
		stats := statsFor(summaries[i], side)
		if stats.AverageCPL >= d.cfg.HighCPL {
			related = append(related, &games[i])
		}
	}

	analyzed := analyzedCount(summaries)
	var pct float64
	if analyzed > 0 {
		pct = float64(len(related)) / float64(analyzed) * 100
	}
	return []Pattern{{
		Type:        "high_cpl",
		Description: fmt.Sprintf("Consistently high centipawn loss (avg %.1f CPL)", avg),
		Frequency:   len(related),
		Percentage:  pct,
		Severity:    severityFor(avg, d.cfg.HighCPLSeverity),
		Games:       related,
	}}
}

// missedTop3 flags a low top-3 engine-move hit rate.
func (d *Detector) missedTop3(agg *aggregate.AggregatedPlayerStats) []Pattern {
	top3Pct := agg.PlayerStats.Top3MovePct
	if top3Pct >= d.cfg.MissedTop3Pct {
		return nil
	}

	total := agg.PlayerStats.TotalMoves
	missed := total - int(float64(total)*top3Pct/100)
	return []Pattern{{
		Type:        "missed_top3",
		Description: fmt.Sprintf("Frequently misses top 3 moves (%.1f%% in top 3)", top3Pct),
		Frequency:   missed,
		Percentage:  100 - top3Pct,
		Severity:    severityFor(100-top3Pct, d.cfg.MissedTop3Severity),
	}}
}

// conversionIssues counts games where the player reached a winning
// evaluation but failed to win.
func (d *Detector) conversionIssues(player string, games []record.GameData, summaries []*gamesummary.GameSummary) []Pattern {
	var related []*record.GameData

	for i := range games {
		if i >= len(summaries) || summaries[i] == nil {
			continue
		}
		game := &games[i]
		side, ok := game.SideOf(player)
		if !ok {
			continue
		}

		hadWinning := false
		for _, pt := range summaries[i].Evaluations {
			if side == record.White && pt.CP >= d.cfg.WinningEval {
				hadWinning = true
				break
			}
			if side == record.Black && pt.CP <= -d.cfg.WinningEval {
				hadWinning = true
				break
			}
		}
		if hadWinning && !game.Result.WonBy(side) {
			related = append(related, game)
		}
	}
	if len(related) == 0 {
		return nil
	}

	rate := float64(len(related)) / float64(analyzedCount(summaries)) * 100
	if rate < d.cfg.ConversionIssueRate {
		return nil
	}
	return []Pattern{{
		Type:        "conversion_issues",
		Description: fmt.Sprintf("Struggles to convert winning positions (%d games)", len(related)),
		Frequency:   len(related),
		Percentage:  rate,
		Severity:    severityFor(rate, d.cfg.ConversionSeverity),
		Games:       related,
	}}
}

// defensiveWeaknesses counts games where the player, once in a losing
// position, committed two or more blunders.
func (d *Detector) defensiveWeaknesses(player string, games []record.GameData, summaries []*gamesummary.GameSummary) []Pattern {
	var related []*record.GameData

	for i := range games {
		if i >= len(summaries) || summaries[i] == nil {
			continue
		}
		game := &games[i]
		side, ok := game.SideOf(player)
		if !ok {
			continue
		}
		moves, err := game.DecodeAnalysis()
		if err != nil || len(moves) == 0 {
			continue
		}

		evalAt := map[int]float64{}
		for _, pt := range summaries[i].Evaluations {
			evalAt[pt.Ply] = pt.CP
		}

		hadLosing := false
		blundersWhileLosing := 0
		for j := range moves {
			m := &moves[j]
			// The evaluation before a move sits on the preceding ply.
			var plyBefore int
			if side == record.White {
				plyBefore = (m.MoveNumber - 1) * 2
			} else {
				plyBefore = (m.MoveNumber-1)*2 + 1
			}
			evalBefore, ok := evalAt[plyBefore]
			if !ok {
				continue
			}
			losing := (side == record.White && evalBefore <= -d.cfg.LosingEval) ||
				(side == record.Black && evalBefore >= d.cfg.LosingEval)
			if !losing {
				continue
			}
			hadLosing = true
			if m.Assessment(side) == record.AssessBlunder {
				blundersWhileLosing++
			}
		}
		if hadLosing && blundersWhileLosing >= 2 {
			related = append(related, game)
		}
	}
	if len(related) == 0 {
		return nil
	}

	rate := float64(len(related)) / float64(analyzedCount(summaries)) * 100
	if rate < d.cfg.DefensiveWeaknessRate {
		return nil
	}
	return []Pattern{{
		Type:        "defensive_weaknesses",
		Description: fmt.Sprintf("Struggles when defending (%d games with multiple blunders)", len(related)),
		Frequency:   len(related),
		Percentage:  rate,
		Severity:    severityFor(rate, d.cfg.DefensiveSeverity),
		Games:       related,
	}}
}

// consistentInaccuracies flags a high rate of small errors.
func (d *Detector) consistentInaccuracies(agg *aggregate.AggregatedPlayerStats) []Pattern {
	total := agg.PlayerStats.TotalMoves
	if total == 0 {
		return nil
	}
	rate := float64(agg.PlayerStats.Inaccuracies) / float64(total) * 100
	if rate < d.cfg.InaccuracyRate {
		return nil
	}
	return []Pattern{{
		Type:        "consistent_inaccuracies",
		Description: fmt.Sprintf("Many small errors (%.1f%% of moves are inaccuracies)", rate),
		Frequency:   agg.PlayerStats.Inaccuracies,
		Percentage:  rate,
		Severity:    severityFor(rate, d.cfg.InaccuracySeverity),
	}}
}

// analyzedCount counts games that produced a summary. Rate denominators use
// this, not the raw batch size: unanalyzed games carry no signal either way.
func analyzedCount(summaries []*gamesummary.GameSummary) int {
	n := 0
	for _, s := range summaries {
		if s != nil {
			n++
		}
	}
	return n
}

func statsFor(s *gamesummary.GameSummary, side record.Side) gamesummary.PlayerStatistics {
	if side == record.White {
		return s.WhiteStats
	}
	return s.BlackStats
}

func phasesFor(s *gamesummary.GameSummary, side record.Side) gamesummary.PhaseSet {
	if side == record.White {
		return s.WhitePhases
	}
	return s.BlackPhases
}

// openingOf names a game's opening from the last move carrying a fresh
// opening tag, falling back to the game header's ECO code.
func openingOf(game *record.GameData, moves []record.MoveRecord) (eco, name string) {
	for i := len(moves) - 1; i >= 0; i-- {
		m := &moves[i]
		if m.OpeningName != "" && m.OpeningName != record.OpeningRepeat {
			eco = m.ECO
			if eco == "" {
				eco = "Unknown"
			}
			return eco, m.OpeningName
		}
	}
	eco = game.ECO
	if eco == "" {
		eco = "Unknown"
	}
	return eco, ""
}
