package record

import (
	"encoding/json"
	"errors"
	"strings"
)

// GameData is the per-game handle supplied by the database/PGN collaborator.
// Analysis is the embedded analysis payload: a JSON-encoded MoveRecord list.
// A game with an empty payload has not been analyzed.
type GameData struct {
	White    string          `json:"white"`
	Black    string          `json:"black"`
	Result   Result          `json:"result"`
	ECO      string          `json:"eco,omitempty"`
	Analysis json.RawMessage `json:"analysis,omitempty"`
}

// ErrNoAnalysis is returned by DecodeAnalysis when the game carries no
// embedded analysis payload.
var ErrNoAnalysis = errors.New("game has no embedded analysis data")

// Analyzed reports whether the game carries an embedded analysis payload.
func (g *GameData) Analyzed() bool {
	return len(g.Analysis) > 0
}

// SideOf returns the side the named player holds in this game.
func (g *GameData) SideOf(player string) (Side, bool) {
	switch {
	case strings.TrimSpace(g.White) == player:
		return White, true
	case strings.TrimSpace(g.Black) == player:
		return Black, true
	}
	return White, false
}

// DecodeAnalysis decodes the embedded analysis payload into move records.
func (g *GameData) DecodeAnalysis() ([]MoveRecord, error) {
	if !g.Analyzed() {
		return nil, ErrNoAnalysis
	}
	var moves []MoveRecord
	if err := json.Unmarshal(g.Analysis, &moves); err != nil {
		return nil, err
	}
	return moves, nil
}

// EncodeAnalysis encodes move records into an embeddable analysis payload.
func EncodeAnalysis(moves []MoveRecord) (json.RawMessage, error) {
	return json.Marshal(moves)
}
