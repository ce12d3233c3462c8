// Package aggregate fans a batch of analyzed games out to parallel summary
// workers and folds the per-game results into a single player profile.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/gamesummary"
	"github.com/carachess/profiler/record"
)

var (
	// ErrNoAnalyzedGames means the batch had no game with usable analysis.
	ErrNoAnalyzedGames = errors.New("no analyzed games for player")
	// ErrCancelled means the caller's cancellation hook fired mid-batch.
	ErrCancelled = errors.New("aggregation cancelled")
)

// OpeningUsage counts how often one opening was played.
type OpeningUsage struct {
	ECO   string
	Name  string
	Count int
}

// OpeningCPL carries an opening's average centipawn loss over the games in
// which it appeared.
type OpeningCPL struct {
	ECO        string
	Name       string
	AverageCPL float64
	Count      int
}

// AggregatedPlayerStats is one player's profile over a batch of games.
// PlayerStats and Phases describe the player's dominant color: white when
// the player had at least as many white games as black games.
type AggregatedPlayerStats struct {
	TotalGames    int
	AnalyzedGames int

	Wins    int
	Draws   int
	Losses  int
	WinRate float64

	PlayerStats gamesummary.PlayerStatistics
	Phases      gamesummary.PhaseSet

	TopOpenings   []OpeningUsage
	WorstOpenings []OpeningCPL
	BestOpenings  []OpeningCPL
}

// Options tunes one aggregation run. The zero value is usable.
type Options struct {
	// Concurrency caps the worker pool; <=0 selects CPU count minus one.
	Concurrency int
	// Progress, when set, receives a 0-100 percentage and a short message
	// after each completed game. It is called from the coordinator only.
	Progress func(percent int, message string)
	// Cancelled, when set, is polled between game completions. Returning
	// true abandons the run; in-flight results are discarded.
	Cancelled func() bool
}

func (o *Options) workers() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return max(1, runtime.NumCPU()-1)
}

// Aggregator computes batch player profiles. Safe for concurrent use.
type Aggregator struct {
	cfg     *config.Config
	builder *gamesummary.Builder
}

// New returns an Aggregator using cfg.
func New(cfg *config.Config) *Aggregator {
	return &Aggregator{cfg: cfg, builder: gamesummary.NewBuilder(cfg)}
}

// gameWork is one worker's owned result bundle.
type gameWork struct {
	side    record.Side
	result  record.Result
	summary *gamesummary.GameSummary
	moves   []record.MoveRecord

	opening       openingKey
	openingCPL    float64
	hasOpeningCPL bool
}

type openingKey struct {
	eco  string
	name string
}

// Aggregate processes every analyzed game of the batch on a worker pool and
// folds the results into one AggregatedPlayerStats plus per-game summaries.
// The returned summary slice is parallel to games, with nil entries for
// games that were skipped (no analysis payload, player absent). Returns
// ErrNoAnalyzedGames when nothing was usable and ErrCancelled when
// opts.Cancelled fired.
func (a *Aggregator) Aggregate(ctx context.Context, player string, games []record.GameData, opts Options) (*AggregatedPlayerStats, []*gamesummary.GameSummary, error) {
	if len(games) == 0 {
		return nil, nil, ErrNoAnalyzedGames
	}

	var analyzed []int
	for i := range games {
		if games[i].Analyzed() {
			analyzed = append(analyzed, i)
		}
	}
	if len(analyzed) == 0 {
		return nil, nil, ErrNoAnalyzedGames
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Results are indexed by input position; workers write only their own
	// slot and the coordinator reads the slice after Wait, so no locking is
	// needed around it.
	results := make([]*gameWork, len(games))
	completions := make(chan struct{}, len(analyzed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	go func() {
		for _, gameIdx := range analyzed {
			gameIdx := gameIdx
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[gameIdx] = a.processGame(player, &games[gameIdx])
				completions <- struct{}{}
				return nil
			})
		}
		g.Wait()
		close(completions)
	}()

	// Drain completions so progress and cancellation are observed between
	// game completions, not at the end.
	completed := 0
	cancelled := false
	for range completions {
		completed++
		if opts.Progress != nil {
			pct := completed * 100 / len(analyzed)
			opts.Progress(pct, fmt.Sprintf("processed %d/%d games", completed, len(analyzed)))
		}
		if !cancelled && opts.Cancelled != nil && opts.Cancelled() {
			cancelled = true
			cancel()
		}
	}
	if err := g.Wait(); err != nil && !cancelled && !errors.Is(err, context.Canceled) {
		return nil, nil, err
	}
	if cancelled {
		return nil, nil, ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	return a.fold(len(games), results)
}

// processGame derives one game's result bundle. Returns nil when the game's
// analysis payload cannot be decoded or the player did not take part.
func (a *Aggregator) processGame(player string, game *record.GameData) *gameWork {
	side, ok := game.SideOf(player)
	if !ok {
		return nil
	}
	moves, err := game.DecodeAnalysis()
	if err != nil || len(moves) == 0 {
		log.Warn().Err(err).Str("white", game.White).Str("black", game.Black).
			Msg("skipping game with unusable analysis")
		return nil
	}

	w := &gameWork{
		side:    side,
		result:  game.Result,
		summary: a.builder.Build(moves, len(moves), game.Result),
	}
	for i := range moves {
		if moves[i].Move(side) != "" {
			w.moves = append(w.moves, moves[i])
		}
	}

	w.opening = identifyOpening(game, moves)
	openingEnd, _ := gamesummary.PhaseBoundaries(a.cfg, moves, len(moves))
	var cpls []float64
	for i := range moves {
		m := &moves[i]
		if m.MoveNumber > openingEnd || m.Move(side) == "" {
			continue
		}
		if cpl, ok := record.ParseCPL(m.CPL(side)); ok {
			cpls = append(cpls, cpl)
		}
	}
	if len(cpls) > 0 {
		w.openingCPL = gamesummary.CappedMean(cpls)
		w.hasOpeningCPL = true
	}
	return w
}

// identifyOpening names the game's opening from the last move that carries
// a fresh opening name; repeat markers are skipped. Falls back to the game
// header's ECO code.
func identifyOpening(game *record.GameData, moves []record.MoveRecord) openingKey {
	for i := len(moves) - 1; i >= 0; i-- {
		m := &moves[i]
		if m.OpeningName != "" && m.OpeningName != record.OpeningRepeat {
			eco := m.ECO
			if eco == "" {
				eco = "Unknown"
			}
			return openingKey{eco: eco, name: m.OpeningName}
		}
	}
	eco := game.ECO
	if eco == "" {
		eco = "Unknown"
	}
	return openingKey{eco: eco}
}
