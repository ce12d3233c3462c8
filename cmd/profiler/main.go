package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/carachess/profiler/aggregate"
	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/errorpattern"
	"github.com/carachess/profiler/gamesummary"
	"github.com/carachess/profiler/record"
	"github.com/carachess/profiler/stats"
)

// batchFile is the on-disk input: a player plus their games with embedded
// analysis payloads.
type batchFile struct {
	Player string            `json:"player"`
	Games  []record.GameData `json:"games"`
}

func main() {
	var (
		batchPath   = flag.String("batch", "", "path to the batch JSON file (player + games)")
		configPath  = flag.String("config", "", "optional config file overriding the defaults")
		player      = flag.String("player", "", "player name; overrides the batch file's player")
		concurrency = flag.Int("concurrency", 0, "worker pool size; 0 = CPU count minus one")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	if *batchPath == "" {
		log.Fatal().Msg("-batch is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	batch, err := loadBatch(*batchPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *batchPath).Msg("loading batch")
	}
	name := batch.Player
	if *player != "" {
		name = *player
	}
	if name == "" {
		log.Fatal().Msg("no player name in batch file or -player flag")
	}
	log.Info().Str("player", name).Int("games", len(batch.Games)).Msg("loaded batch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := aggregate.Options{
		Concurrency: *concurrency,
		Progress: func(percent int, message string) {
			log.Info().Int("percent", percent).Msg(message)
		},
	}
	agg, summaries, err := aggregate.New(cfg).Aggregate(ctx, name, batch.Games, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("aggregation failed")
	}

	patterns := errorpattern.New(&cfg.ErrorPatterns).Detect(name, batch.Games, agg, summaries)

	printReport(name, agg, patterns)
	printAccuracyHistogram(name, batch.Games, summaries)
}

func loadBatch(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var batch batchFile
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	return &batch, nil
}

func printReport(player string, agg *aggregate.AggregatedPlayerStats, patterns []errorpattern.Pattern) {
	fmt.Printf("\nProfile for %s (%d games, %d analyzed)\n", player, agg.TotalGames, agg.AnalyzedGames)
	fmt.Printf("Record: +%d =%d -%d (%.1f%% wins)\n", agg.Wins, agg.Draws, agg.Losses, agg.WinRate)
	fmt.Printf("Accuracy %.1f%%, estimated rating %d\n", agg.PlayerStats.Accuracy, agg.PlayerStats.EstimatedElo)
	fmt.Printf("Average CPL %.1f (median %.1f)\n", agg.PlayerStats.AverageCPL, agg.PlayerStats.MedianCPL)

	fmt.Println("\nPhases:")
	fmt.Printf("  opening:    %3d moves, avg CPL %6.1f, accuracy %5.1f%%\n",
		agg.Phases.Opening.Moves, agg.Phases.Opening.AverageCPL, agg.Phases.Opening.Accuracy)
	fmt.Printf("  middlegame: %3d moves, avg CPL %6.1f, accuracy %5.1f%%\n",
		agg.Phases.Middlegame.Moves, agg.Phases.Middlegame.AverageCPL, agg.Phases.Middlegame.Accuracy)
	fmt.Printf("  endgame:    %3d moves, avg CPL %6.1f, accuracy %5.1f%%\n",
		agg.Phases.Endgame.Moves, agg.Phases.Endgame.AverageCPL, agg.Phases.Endgame.Accuracy)

	if len(agg.TopOpenings) > 0 {
		fmt.Println("\nMost played openings:")
		for _, o := range agg.TopOpenings {
			fmt.Printf("  %s %s (%d games)\n", o.ECO, o.Name, o.Count)
		}
	}
	if len(agg.WorstOpenings) > 0 {
		fmt.Println("Worst openings by CPL:")
		for _, o := range agg.WorstOpenings {
			fmt.Printf("  %s %s: %.1f CPL over %d games\n", o.ECO, o.Name, o.AverageCPL, o.Count)
		}
	}
	if len(agg.BestOpenings) > 0 {
		fmt.Println("Best openings by CPL:")
		for _, o := range agg.BestOpenings {
			fmt.Printf("  %s %s: %.1f CPL over %d games\n", o.ECO, o.Name, o.AverageCPL, o.Count)
		}
	}

	if len(patterns) > 0 {
		fmt.Println("\nRecurring weaknesses:")
		for _, p := range patterns {
			fmt.Printf("  [%s] %s (%d occurrences)\n", p.Severity, p.Description, p.Frequency)
		}
	}
}

func printAccuracyHistogram(player string, games []record.GameData, summaries []*gamesummary.GameSummary) {
	if len(summaries) < 2 {
		return
	}
	accuracies := make([]float64, 0, len(summaries))
	for i := range games {
		if i >= len(summaries) || summaries[i] == nil {
			continue
		}
		side, ok := games[i].SideOf(player)
		if !ok {
			continue
		}
		if side == record.White {
			accuracies = append(accuracies, summaries[i].WhiteStats.Accuracy)
		} else {
			accuracies = append(accuracies, summaries[i].BlackStats.Accuracy)
		}
	}
	if len(accuracies) < 2 {
		return
	}

	var st stats.Statistic
	for _, a := range accuracies {
		st.Push(a)
	}
	margin := stats.ZVal(95) * st.StandardError()
	fmt.Printf("\nPer-game accuracy: %.1f%% ± %.1f (95%% CI, n=%d)\n",
		st.Mean(), margin, st.Count())

	fmt.Println("Per-game accuracy distribution:")
	hist := histogram.Hist(10, accuracies)
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(40)); err != nil {
		log.Warn().Err(err).Msg("rendering histogram")
	}
}
