package errorpattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carachess/profiler/aggregate"
	"github.com/carachess/profiler/config"
	"github.com/carachess/profiler/gamesummary"
	"github.com/carachess/profiler/record"
)

func defaultDetector() *Detector {
	return New(&config.Default().ErrorPatterns)
}

func analyzedGame(t *testing.T, g record.GameData, moves []record.MoveRecord) record.GameData {
	t.Helper()
	payload, err := record.EncodeAnalysis(moves)
	require.NoError(t, err)
	g.Analysis = payload
	return g
}

func TestSeverityFor(t *testing.T) {
	cuts := config.SeverityCuts{30, 50, 70}
	assert.Equal(t, SeverityLow, severityFor(10, cuts))
	assert.Equal(t, SeverityModerate, severityFor(30, cuts))
	assert.Equal(t, SeverityModerate, severityFor(49.9, cuts))
	assert.Equal(t, SeverityHigh, severityFor(50, cuts))
	assert.Equal(t, SeverityCritical, severityFor(70, cuts))
	assert.Equal(t, SeverityCritical, severityFor(200, cuts))
}

func TestDetectEmptyInputs(t *testing.T) {
	d := defaultDetector()
	assert.Nil(t, d.Detect("Alice", nil, nil, nil))
	assert.Nil(t, d.Detect("Alice", []record.GameData{{}}, nil, nil))
	assert.Nil(t, d.Detect("Alice", []record.GameData{{}}, &aggregate.AggregatedPlayerStats{}, nil))
}

func TestMissedTop3(t *testing.T) {
	d := defaultDetector()
	agg := &aggregate.AggregatedPlayerStats{}
	agg.PlayerStats.TotalMoves = 100
	agg.PlayerStats.Top3MovePct = 40

	patterns := d.missedTop3(agg)
	require.Len(t, patterns, 1)
	p := patterns[0]
	assert.Equal(t, "missed_top3", p.Type)
	assert.Equal(t, 60, p.Frequency)
	assert.InDelta(t, 60.0, p.Percentage, 1e-9)
	assert.Equal(t, SeverityCritical, p.Severity)
	assert.Empty(t, p.Games)

	agg.PlayerStats.Top3MovePct = 75
	assert.Empty(t, d.missedTop3(agg))
}

func TestConsistentInaccuracies(t *testing.T) {
	d := defaultDetector()
	agg := &aggregate.AggregatedPlayerStats{}
	agg.PlayerStats.TotalMoves = 100
	agg.PlayerStats.Inaccuracies = 30

	patterns := d.consistentInaccuracies(agg)
	require.Len(t, patterns, 1)
	assert.Equal(t, "consistent_inaccuracies", patterns[0].Type)
	assert.Equal(t, SeverityModerate, patterns[0].Severity)

	agg.PlayerStats.Inaccuracies = 10
	assert.Empty(t, d.consistentInaccuracies(agg))
}

func TestPhaseBlunders(t *testing.T) {
	d := defaultDetector()
	agg := &aggregate.AggregatedPlayerStats{}
	agg.PlayerStats.Blunders = 10
	agg.Phases.Opening.Blunders = 1
	agg.Phases.Middlegame.Blunders = 6
	agg.Phases.Endgame.Blunders = 3

	games := []record.GameData{{White: "Alice", Black: "Bob", Result: record.Draw}}
	summary := &gamesummary.GameSummary{}
	summary.WhitePhases.Middlegame.Blunders = 2
	summaries := []*gamesummary.GameSummary{summary}

	patterns := d.phaseBlunders("Alice", games, agg, summaries)
	require.Len(t, patterns, 1)
	p := patterns[0]
	assert.Equal(t, "phase_blunders", p.Type)
	assert.Contains(t, p.Description, "middlegame")
	assert.Equal(t, 6, p.Frequency)
	assert.InDelta(t, 60.0, p.Percentage, 1e-9)
	assert.Equal(t, SeverityHigh, p.Severity)
	require.Len(t, p.Games, 1)
}

func TestPhaseBlundersNoBlunders(t *testing.T) {
	d := defaultDetector()
	agg := &aggregate.AggregatedPlayerStats{}
	assert.Empty(t, d.phaseBlunders("Alice", nil, agg, nil))
}

func TestHighCPL(t *testing.T) {
	d := defaultDetector()
	agg := &aggregate.AggregatedPlayerStats{}
	agg.PlayerStats.AverageCPL = 90

	games := []record.GameData{
		{White: "Alice", Black: "Bob"},
		{White: "Carol", Black: "Alice"},
	}
	bad := &gamesummary.GameSummary{}
	bad.WhiteStats.AverageCPL = 120
	clean := &gamesummary.GameSummary{}
	clean.BlackStats.AverageCPL = 20
	summaries := []*gamesummary.GameSummary{bad, clean}

	patterns := d.highCPL("Alice", games, agg, summaries)
	require.Len(t, patterns, 1)
	p := patterns[0]
	assert.Equal(t, "high_cpl", p.Type)
	assert.Equal(t, 1, p.Frequency)
	assert.InDelta(t, 50.0, p.Percentage, 1e-9)
	assert.Equal(t, SeverityHigh, p.Severity)

	agg.PlayerStats.AverageCPL = 30
	assert.Empty(t, d.highCPL("Alice", games, agg, summaries))
}

func TestOpeningErrors(t *testing.T) {
	cfg := config.Default().ErrorPatterns
	d := New(&cfg)

	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob", Result: record.Draw},
			[]record.MoveRecord{{MoveNumber: 1, WhiteMove: "e4", ECO: "C50", OpeningName: "Italian Game"}}),
	}
	summary := &gamesummary.GameSummary{}
	summary.WhitePhases.Opening = gamesummary.PhaseStatistics{
		Moves: 12, Inaccuracies: 2, Mistakes: 1, Blunders: 1,
	}
	summaries := []*gamesummary.GameSummary{summary}

	patterns := d.openingErrors("Alice", games, summaries)
	require.Len(t, patterns, 1)
	p := patterns[0]
	assert.Equal(t, "opening_errors", p.Type)
	assert.Contains(t, p.Description, "C50")
	assert.Contains(t, p.Description, "Italian Game")
	assert.Equal(t, 4, p.Frequency)
	assert.InDelta(t, 100.0/3, p.Percentage, 1e-6)
	assert.Equal(t, SeverityLow, p.Severity)
	require.Len(t, p.Games, 1)
}

func TestOpeningErrorsSmallSample(t *testing.T) {
	d := defaultDetector()
	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob"},
			[]record.MoveRecord{{MoveNumber: 1, WhiteMove: "e4", ECO: "C50", OpeningName: "Italian Game"}}),
	}
	summary := &gamesummary.GameSummary{}
	summary.WhitePhases.Opening = gamesummary.PhaseStatistics{Moves: 5, Blunders: 5}
	assert.Empty(t, d.openingErrors("Alice", games, []*gamesummary.GameSummary{summary}))
}

func TestConversionIssues(t *testing.T) {
	d := defaultDetector()

	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob", Result: record.Draw},
			[]record.MoveRecord{{MoveNumber: 1, WhiteMove: "e4"}}),
	}
	summary := &gamesummary.GameSummary{
		Evaluations: []gamesummary.EvalPoint{{Ply: 0, CP: 0}, {Ply: 1, CP: 250}},
	}

	patterns := d.conversionIssues("Alice", games, []*gamesummary.GameSummary{summary})
	require.Len(t, patterns, 1)
	p := patterns[0]
	assert.Equal(t, "conversion_issues", p.Type)
	assert.Equal(t, 1, p.Frequency)
	assert.InDelta(t, 100.0, p.Percentage, 1e-9)
	assert.Equal(t, SeverityCritical, p.Severity)
}

func TestConversionIssuesIgnoresUnanalyzedGames(t *testing.T) {
	d := defaultDetector()

	// One analyzed game with a blown +300 position, padded with nine
	// unanalyzed games. The rate is 100% of analyzed games, not 10% of the
	// raw batch.
	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob", Result: record.Draw},
			[]record.MoveRecord{{MoveNumber: 1, WhiteMove: "e4"}}),
	}
	summaries := []*gamesummary.GameSummary{
		{Evaluations: []gamesummary.EvalPoint{{Ply: 1, CP: 300}}},
	}
	for i := 0; i < 9; i++ {
		games = append(games, record.GameData{White: "Alice", Black: "Bob", Result: record.Draw})
		summaries = append(summaries, nil)
	}

	patterns := d.conversionIssues("Alice", games, summaries)
	require.Len(t, patterns, 1)
	assert.Equal(t, 1, patterns[0].Frequency)
	assert.InDelta(t, 100.0, patterns[0].Percentage, 1e-9)
}

func TestRatesUseAnalyzedDenominator(t *testing.T) {
	d := defaultDetector()

	moves := []record.MoveRecord{
		{MoveNumber: 2, WhiteMove: "Qh5??", AssessWhite: record.AssessBlunder},
		{MoveNumber: 3, WhiteMove: "Qxf7??", AssessWhite: record.AssessBlunder},
	}
	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob", Result: record.BlackWins}, moves),
		{White: "Alice", Black: "Carol"}, // unanalyzed
		{White: "Alice", Black: "Dave"},  // unanalyzed
	}
	bad := &gamesummary.GameSummary{
		Evaluations: []gamesummary.EvalPoint{{Ply: 2, CP: -250}, {Ply: 4, CP: -400}},
	}
	bad.WhiteStats.AverageCPL = 120
	summaries := []*gamesummary.GameSummary{bad, nil, nil}

	defensive := d.defensiveWeaknesses("Alice", games, summaries)
	require.Len(t, defensive, 1)
	assert.InDelta(t, 100.0, defensive[0].Percentage, 1e-9)

	agg := &aggregate.AggregatedPlayerStats{}
	agg.PlayerStats.AverageCPL = 120
	high := d.highCPL("Alice", games, agg, summaries)
	require.Len(t, high, 1)
	assert.InDelta(t, 100.0, high[0].Percentage, 1e-9)
}

func TestConversionIssuesWonGame(t *testing.T) {
	d := defaultDetector()
	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob", Result: record.WhiteWins},
			[]record.MoveRecord{{MoveNumber: 1, WhiteMove: "e4"}}),
	}
	summary := &gamesummary.GameSummary{
		Evaluations: []gamesummary.EvalPoint{{Ply: 1, CP: 250}},
	}
	assert.Empty(t, d.conversionIssues("Alice", games, []*gamesummary.GameSummary{summary}))
}

func TestDefensiveWeaknesses(t *testing.T) {
	d := defaultDetector()

	moves := []record.MoveRecord{
		{MoveNumber: 1, WhiteMove: "e4", BlackMove: "e5"},
		{MoveNumber: 2, WhiteMove: "Qh5??", AssessWhite: record.AssessBlunder, BlackMove: "Nc6"},
		{MoveNumber: 3, WhiteMove: "Qxf7??", AssessWhite: record.AssessBlunder, BlackMove: "Kxf7"},
	}
	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob", Result: record.BlackWins}, moves),
	}
	// Alice is already lost after black's first and second replies (plies 2
	// and 4), then blunders twice more.
	summary := &gamesummary.GameSummary{
		Evaluations: []gamesummary.EvalPoint{
			{Ply: 0, CP: 0},
			{Ply: 2, CP: -250},
			{Ply: 4, CP: -400},
		},
	}

	patterns := d.defensiveWeaknesses("Alice", games, []*gamesummary.GameSummary{summary})
	require.Len(t, patterns, 1)
	p := patterns[0]
	assert.Equal(t, "defensive_weaknesses", p.Type)
	assert.Equal(t, 1, p.Frequency)
	assert.Equal(t, SeverityCritical, p.Severity)
}

func TestDefensiveWeaknessesSingleBlunder(t *testing.T) {
	d := defaultDetector()
	moves := []record.MoveRecord{
		{MoveNumber: 2, WhiteMove: "Qh5??", AssessWhite: record.AssessBlunder},
	}
	games := []record.GameData{
		analyzedGame(t, record.GameData{White: "Alice", Black: "Bob", Result: record.BlackWins}, moves),
	}
	summary := &gamesummary.GameSummary{
		Evaluations: []gamesummary.EvalPoint{{Ply: 2, CP: -250}},
	}
	assert.Empty(t, d.defensiveWeaknesses("Alice", games, []*gamesummary.GameSummary{summary}))
}

func TestDetectOrdersGamelessFirst(t *testing.T) {
	d := defaultDetector()

	agg := &aggregate.AggregatedPlayerStats{}
	agg.PlayerStats.TotalMoves = 100
	agg.PlayerStats.Top3MovePct = 40  // gameless, percentage 60
	agg.PlayerStats.Inaccuracies = 30 // gameless, percentage 30
	agg.PlayerStats.AverageCPL = 90   // has games

	games := []record.GameData{{White: "Alice", Black: "Bob"}}
	summary := &gamesummary.GameSummary{}
	summary.WhiteStats.AverageCPL = 90
	summaries := []*gamesummary.GameSummary{summary}

	patterns := d.Detect("Alice", games, agg, summaries)
	require.Len(t, patterns, 3)
	assert.Equal(t, "missed_top3", patterns[0].Type)
	assert.Equal(t, "consistent_inaccuracies", patterns[1].Type)
	assert.Equal(t, "high_cpl", patterns[2].Type)
}

func TestDetectSkipsNilSummaries(t *testing.T) {
	d := defaultDetector()
	agg := &aggregate.AggregatedPlayerStats{}
	agg.PlayerStats.AverageCPL = 90
	agg.PlayerStats.TotalMoves = 10

	games := []record.GameData{{White: "Alice", Black: "Bob"}}
	patterns := d.Detect("Alice", games, agg, []*gamesummary.GameSummary{nil})
	for _, p := range patterns {
		assert.Empty(t, p.Games, p.Type)
	}
}
