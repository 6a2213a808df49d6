// Package metrics turns the raw event log of a cognitive mini-game into a
// score and a set of named measures.
package metrics

import (
	"encoding/json"
	"fmt"
	"math"

	"velum-go/internal/models"
)

// Games scored on the server.
const (
	GameCPT         = "cpt"
	GameDigitSpan   = "digit-span"
	GameTrailMaking = "trail-making"
)

// Result is the scored outcome of one round.
type Result struct {
	Score    int                `json:"score"`
	Duration float64            `json:"duration"` // seconds
	Measures map[string]float64 `json:"measures"`
}

// Evaluate decodes raw for the named game and scores it.
func Evaluate(game string, raw json.RawMessage) (*Result, error) {
	switch game {
	case GameCPT:
		var data CPTData
		if err := decode(raw, &data); err != nil {
			return nil, err
		}
		return ScoreCPT(&data), nil
	case GameDigitSpan:
		var data DigitSpanData
		if err := decode(raw, &data); err != nil {
			return nil, err
		}
		return ScoreDigitSpan(&data), nil
	case GameTrailMaking:
		var data TrailMakingData
		if err := decode(raw, &data); err != nil {
			return nil, err
		}
		return ScoreTrailMaking(&data), nil
	}
	return nil, fmt.Errorf("%w: no scorer for game %q", models.ErrInvalidInput, game)
}

// Supported reports whether Evaluate can score game.
func Supported(game string) bool {
	switch game {
	case GameCPT, GameDigitSpan, GameTrailMaking:
		return true
	}
	return false
}

func decode(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: trial data is required", models.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: malformed trial data: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// elapsedSeconds converts a pair of performance.now() millisecond stamps.
func elapsedSeconds(start, end float64) float64 {
	if end <= start {
		return 0
	}
	return round2((end - start) / 1000)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
