package record

// Result is a game result in PGN notation. The zero value means the result
// is unknown or the game is unfinished.
type Result string

const (
	WhiteWins Result = "1-0"
	BlackWins Result = "0-1"
	Draw      Result = "1/2-1/2"
	Unknown   Result = "*"
)

// WonBy reports whether the given side won the game.
func (r Result) WonBy(s Side) bool {
	if s == White {
		return r == WhiteWins
	}
	return r == BlackWins
}

// Undecided reports whether the result is a draw, unknown, or absent. The
// formula variable set treats all three as "drawn" so that an unfinished game
// does not count as a loss in result-sensitive formulas.
func (r Result) Undecided() bool {
	return r == Draw || r == Unknown || r == ""
}
