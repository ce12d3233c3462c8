package record

import (
	"strconv"
	"strings"
)

// mateBase is the centipawn magnitude assigned to a mate score. A mate in N
// maps to ±(mateBase - N) so that shorter mates order above longer ones.
const mateBase = 30000.0

// ParseEvaluation converts an engine evaluation string to centipawns.
// Plain numbers are pawn units ("+1.5" -> 150). Mate scores use the "M3" /
// "-M2" notation. Returns false for anything unparseable.
func ParseEvaluation(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.HasPrefix(s, "-M") {
		n, err := strconv.Atoi(s[2:])
		if err != nil {
			return 0, false
		}
		return -mateBase + float64(n), true
	}
	if strings.HasPrefix(s, "M") {
		n, err := strconv.Atoi(s[1:])
		if err != nil {
			return 0, false
		}
		return mateBase - float64(n), true
	}

	pawns, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return pawns * 100.0, true
}

// ParseCPL converts a raw centipawn-loss string to a number. Returns false
// for empty or unparseable values; callers skip such moves.
func ParseCPL(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
