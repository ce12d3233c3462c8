package aggregate

import (
	"sort"

	"github.com/carachess/profiler/gamesummary"
	"github.com/carachess/profiler/record"
	"github.com/carachess/profiler/stats"
)

// phaseAcc accumulates one phase's classification counts and a move-count
// weighted CPL sum across games.
type phaseAcc struct {
	moves   int
	cplSum  float64
	book    int
	brill   int
	best    int
	good    int
	inacc   int
	mistake int
	miss    int
	blunder int
}

func (p *phaseAcc) add(ps gamesummary.PhaseStatistics) {
	p.moves += ps.Moves
	p.cplSum += ps.AverageCPL * float64(ps.Moves)
	p.book += ps.BookMoves
	p.brill += ps.BrilliantMoves
	p.best += ps.BestMoves
	p.good += ps.GoodMoves
	p.inacc += ps.Inaccuracies
	p.mistake += ps.Mistakes
	p.miss += ps.Misses
	p.blunder += ps.Blunders
}

func (p *phaseAcc) stats() gamesummary.PhaseStatistics {
	var avg float64
	if p.moves > 0 {
		avg = p.cplSum / float64(p.moves)
	}
	return gamesummary.PhaseStatistics{
		Moves:          p.moves,
		AverageCPL:     avg,
		Accuracy:       max(5.0, min(100.0, 100.0-avg/3.5)),
		BookMoves:      p.book,
		BrilliantMoves: p.brill,
		BestMoves:      p.best,
		GoodMoves:      p.good,
		Inaccuracies:   p.inacc,
		Mistakes:       p.mistake,
		Misses:         p.miss,
		Blunders:       p.blunder,
	}
}

type openingAcc struct {
	firstSeen int
	count     int
	gameAvgs  []float64
}

// fold walks the worker results in input order and builds the batch
// profile. Input-order folding keeps opening tie-breaks deterministic
// regardless of completion order.
func (a *Aggregator) fold(totalGames int, results []*gameWork) (*AggregatedPlayerStats, []*gamesummary.GameSummary, error) {
	agg := &AggregatedPlayerStats{TotalGames: totalGames}
	summaries := make([]*gamesummary.GameSummary, len(results))

	whiteGames, blackGames := 0, 0
	for i, w := range results {
		if w == nil {
			continue
		}
		agg.AnalyzedGames++
		summaries[i] = w.summary
		switch {
		case w.result.WonBy(w.side):
			agg.Wins++
		case w.result == record.Draw:
			agg.Draws++
		default:
			agg.Losses++
		}
		if w.side == record.White {
			whiteGames++
		} else {
			blackGames++
		}
	}
	if agg.AnalyzedGames == 0 {
		return nil, nil, ErrNoAnalyzedGames
	}
	agg.WinRate = float64(agg.Wins) / float64(agg.AnalyzedGames) * 100

	dominant := record.Black
	if whiteGames >= blackGames {
		dominant = record.White
	}

	var pooled []record.MoveRecord
	var accuracyMean, eloMean stats.Statistic
	var opening, middlegame, endgame phaseAcc
	openings := map[openingKey]*openingAcc{}

	for slot, w := range results {
		if w == nil {
			continue
		}

		acc, ok := openings[w.opening]
		if !ok {
			acc = &openingAcc{firstSeen: slot}
			openings[w.opening] = acc
		}
		acc.count++
		if w.hasOpeningCPL {
			acc.gameAvgs = append(acc.gameAvgs, w.openingCPL)
		}

		if w.side != dominant {
			continue
		}
		pooled = append(pooled, w.moves...)

		var side gamesummary.PlayerStatistics
		var phases gamesummary.PhaseSet
		if w.side == record.White {
			side, phases = w.summary.WhiteStats, w.summary.WhitePhases
		} else {
			side, phases = w.summary.BlackStats, w.summary.BlackPhases
		}
		accuracyMean.Push(side.Accuracy)
		eloMean.Push(float64(side.EstimatedElo))
		opening.add(phases.Opening)
		middlegame.add(phases.Middlegame)
		endgame.add(phases.Endgame)
	}
	if len(pooled) == 0 {
		return nil, nil, ErrNoAnalyzedGames
	}

	// Pooled statistics use raw aggregation over every dominant-side move,
	// with neutral result terms; the headline accuracy and rating are the
	// mean of the per-game values instead of being recomputed from pooled
	// CPL.
	agg.PlayerStats = gamesummary.PlayerStats(a.cfg, pooled, dominant, record.Result(""))
	agg.PlayerStats.Accuracy = accuracyMean.Mean()
	agg.PlayerStats.EstimatedElo = int(eloMean.Mean())

	agg.Phases = gamesummary.PhaseSet{
		Opening:    opening.stats(),
		Middlegame: middlegame.stats(),
		Endgame:    endgame.stats(),
	}

	agg.TopOpenings = topOpenings(openings)
	agg.WorstOpenings, agg.BestOpenings = rankOpeningsByCPL(openings)
	return agg, summaries, nil
}

const openingListSize = 3

func topOpenings(openings map[openingKey]*openingAcc) []OpeningUsage {
	type entry struct {
		key openingKey
		acc *openingAcc
	}
	entries := make([]entry, 0, len(openings))
	for k, acc := range openings {
		entries = append(entries, entry{k, acc})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].acc.count != entries[j].acc.count {
			return entries[i].acc.count > entries[j].acc.count
		}
		return entries[i].acc.firstSeen < entries[j].acc.firstSeen
	})
	out := make([]OpeningUsage, 0, openingListSize)
	for _, e := range entries {
		if len(out) == openingListSize {
			break
		}
		out = append(out, OpeningUsage{ECO: e.key.eco, Name: e.key.name, Count: e.acc.count})
	}
	return out
}

func rankOpeningsByCPL(openings map[openingKey]*openingAcc) (worst, best []OpeningCPL) {
	type entry struct {
		cpl       OpeningCPL
		firstSeen int
	}
	var entries []entry
	for k, acc := range openings {
		if len(acc.gameAvgs) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range acc.gameAvgs {
			sum += v
		}
		entries = append(entries, entry{
			cpl: OpeningCPL{
				ECO:        k.eco,
				Name:       k.name,
				AverageCPL: sum / float64(len(acc.gameAvgs)),
				Count:      acc.count,
			},
			firstSeen: acc.firstSeen,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cpl.AverageCPL != entries[j].cpl.AverageCPL {
			return entries[i].cpl.AverageCPL > entries[j].cpl.AverageCPL
		}
		return entries[i].firstSeen < entries[j].firstSeen
	})
	for _, e := range entries {
		if len(worst) == openingListSize {
			break
		}
		// Flawless openings are not weaknesses.
		if e.cpl.AverageCPL > 0 {
			worst = append(worst, e.cpl)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cpl.AverageCPL != entries[j].cpl.AverageCPL {
			return entries[i].cpl.AverageCPL < entries[j].cpl.AverageCPL
		}
		return entries[i].firstSeen < entries[j].firstSeen
	})
	for _, e := range entries {
		if len(best) == openingListSize {
			break
		}
		best = append(best, e.cpl)
	}
	return worst, best
}
