// Package config holds every tunable of the profiling engine, with documented
// defaults. A Config can be used as-is via Default, or loaded from a file /
// environment via Load.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SeverityCuts is the [moderate, high, critical] cut-point triple used to map
// a pattern's computed percentage to a severity tier.
type SeverityCuts [3]float64

// ErrorPatternConfig holds the thresholds and severity cut points for the
// error-pattern detectors.
type ErrorPatternConfig struct {
	// PhaseBlunderPct is the minimum share (percent) of total blunders the
	// worst phase must hold before a phase-blunder pattern is emitted.
	PhaseBlunderPct float64 `mapstructure:"phase_blunder_pct"`
	// OpeningErrorRate is the minimum (inaccuracies+mistakes+blunders)/moves
	// percentage for an opening-errors pattern.
	OpeningErrorRate float64 `mapstructure:"opening_error_rate"`
	// HighCPL is the average-CPL floor for the high-CPL pattern.
	HighCPL float64 `mapstructure:"high_cpl"`
	// MissedTop3Pct: a pattern is emitted when top-3-move% falls below this.
	MissedTop3Pct float64 `mapstructure:"missed_top3_pct"`
	// WinningEval is the evaluation (centipawns, in the player's favor) at
	// which a position counts as won for conversion tracking.
	WinningEval float64 `mapstructure:"winning_eval"`
	// ConversionIssueRate is the minimum percentage of unconverted won games.
	ConversionIssueRate float64 `mapstructure:"conversion_issue_rate"`
	// LosingEval is the evaluation magnitude (centipawns against the player)
	// at which a position counts as lost for defensive tracking.
	LosingEval float64 `mapstructure:"losing_eval"`
	// DefensiveWeaknessRate is the minimum percentage of games with multiple
	// blunders from lost positions.
	DefensiveWeaknessRate float64 `mapstructure:"defensive_weakness_rate"`
	// InaccuracyRate is the minimum inaccuracy percentage over all moves.
	InaccuracyRate float64 `mapstructure:"inaccuracy_rate"`

	PhaseBlunderSeverity SeverityCuts `mapstructure:"phase_blunder_severity"`
	OpeningErrorSeverity SeverityCuts `mapstructure:"opening_error_severity"`
	HighCPLSeverity      SeverityCuts `mapstructure:"high_cpl_severity"`
	MissedTop3Severity   SeverityCuts `mapstructure:"missed_top3_severity"`
	ConversionSeverity   SeverityCuts `mapstructure:"conversion_severity"`
	DefensiveSeverity    SeverityCuts `mapstructure:"defensive_severity"`
	InaccuracySeverity   SeverityCuts `mapstructure:"inaccuracy_severity"`
}

// Config holds configuration for the profiling engine.
type Config struct {
	// OpeningMoves is the fallback opening length (in moves) used when no
	// non-pawn capture anchors the opening end.
	OpeningMoves int `mapstructure:"opening_moves"`
	// EndgameMoves is the minimum expected endgame length; kept for the
	// presentation collaborators that window the endgame phase.
	EndgameMoves int `mapstructure:"endgame_moves"`

	// Assessment CPL cut points.
	GoodMoveMaxCPL   int `mapstructure:"good_move_max_cpl"`
	InaccuracyMaxCPL int `mapstructure:"inaccuracy_max_cpl"`
	MistakeMaxCPL    int `mapstructure:"mistake_max_cpl"`

	// HighlightsPerPhase caps how many narrative highlights are kept per
	// game phase.
	HighlightsPerPhase int `mapstructure:"highlights_per_phase"`

	// AccuracyFormula and EloFormula are the user-tunable expressions fed to
	// the formula evaluator; the fallbacks are returned on any evaluation
	// failure.
	AccuracyFormula  string  `mapstructure:"accuracy_formula"`
	AccuracyFallback float64 `mapstructure:"accuracy_fallback"`
	EloFormula       string  `mapstructure:"elo_formula"`
	EloFallback      float64 `mapstructure:"elo_fallback"`

	ErrorPatterns ErrorPatternConfig `mapstructure:"error_patterns"`
}

// DefaultAccuracyFormula mirrors the built-in accuracy computation.
const DefaultAccuracyFormula = "max(5.0, min(100.0, 100.0 - (average_cpl / 3.5)))"

// DefaultEloFormula mirrors the built-in rating estimation.
const DefaultEloFormula = "max(0, int(2800 - (average_cpl * 8.5) - ((blunder_rate * 50 + mistake_rate * 20) * 40)))"

// Default returns a Config with every documented default.
func Default() *Config {
	return &Config{
		OpeningMoves:       15,
		EndgameMoves:       10,
		GoodMoveMaxCPL:     50,
		InaccuracyMaxCPL:   100,
		MistakeMaxCPL:      200,
		HighlightsPerPhase: 7,
		AccuracyFormula:    DefaultAccuracyFormula,
		AccuracyFallback:   0,
		EloFormula:         DefaultEloFormula,
		EloFallback:        0,
		ErrorPatterns: ErrorPatternConfig{
			PhaseBlunderPct:       20,
			OpeningErrorRate:      30,
			HighCPL:               50,
			MissedTop3Pct:         60,
			WinningEval:           200,
			ConversionIssueRate:   15,
			LosingEval:            200,
			DefensiveWeaknessRate: 20,
			InaccuracyRate:        25,
			PhaseBlunderSeverity:  SeverityCuts{30, 50, 70},
			OpeningErrorSeverity:  SeverityCuts{40, 50, 60},
			HighCPLSeverity:       SeverityCuts{60, 80, 100},
			MissedTop3Severity:    SeverityCuts{30, 40, 50},
			ConversionSeverity:    SeverityCuts{20, 30, 40},
			DefensiveSeverity:     SeverityCuts{25, 35, 45},
			InaccuracySeverity:    SeverityCuts{30, 40, 50},
		},
	}
}

// Load reads a config file and overlays it on the defaults. Environment
// variables prefixed with PROFILER_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("profiler")
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("opening_moves", d.OpeningMoves)
	v.SetDefault("endgame_moves", d.EndgameMoves)
	v.SetDefault("good_move_max_cpl", d.GoodMoveMaxCPL)
	v.SetDefault("inaccuracy_max_cpl", d.InaccuracyMaxCPL)
	v.SetDefault("mistake_max_cpl", d.MistakeMaxCPL)
	v.SetDefault("highlights_per_phase", d.HighlightsPerPhase)
	v.SetDefault("accuracy_formula", d.AccuracyFormula)
	v.SetDefault("accuracy_fallback", d.AccuracyFallback)
	v.SetDefault("elo_formula", d.EloFormula)
	v.SetDefault("elo_fallback", d.EloFallback)
	v.SetDefault("error_patterns.phase_blunder_pct", d.ErrorPatterns.PhaseBlunderPct)
	v.SetDefault("error_patterns.opening_error_rate", d.ErrorPatterns.OpeningErrorRate)
	v.SetDefault("error_patterns.high_cpl", d.ErrorPatterns.HighCPL)
	v.SetDefault("error_patterns.missed_top3_pct", d.ErrorPatterns.MissedTop3Pct)
	v.SetDefault("error_patterns.winning_eval", d.ErrorPatterns.WinningEval)
	v.SetDefault("error_patterns.conversion_issue_rate", d.ErrorPatterns.ConversionIssueRate)
	v.SetDefault("error_patterns.losing_eval", d.ErrorPatterns.LosingEval)
	v.SetDefault("error_patterns.defensive_weakness_rate", d.ErrorPatterns.DefensiveWeaknessRate)
	v.SetDefault("error_patterns.inaccuracy_rate", d.ErrorPatterns.InaccuracyRate)
	v.SetDefault("error_patterns.phase_blunder_severity", d.ErrorPatterns.PhaseBlunderSeverity)
	v.SetDefault("error_patterns.opening_error_severity", d.ErrorPatterns.OpeningErrorSeverity)
	v.SetDefault("error_patterns.high_cpl_severity", d.ErrorPatterns.HighCPLSeverity)
	v.SetDefault("error_patterns.missed_top3_severity", d.ErrorPatterns.MissedTop3Severity)
	v.SetDefault("error_patterns.conversion_severity", d.ErrorPatterns.ConversionSeverity)
	v.SetDefault("error_patterns.defensive_severity", d.ErrorPatterns.DefensiveSeverity)
	v.SetDefault("error_patterns.inaccuracy_severity", d.ErrorPatterns.InaccuracySeverity)
}
