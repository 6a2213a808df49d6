// Package scoring turns submitted answers into a score and a result label.
//
// The score is the sum of the answer values themselves. Per-option scores
// configured on a questionnaire are not consulted.
package scoring

import (
	"encoding/json"
	"math"

	"velum-go/internal/models"
)

// Thresholds for Categorize. A score above HighRiskAbove is High Risk, a score
// above ModerateAbove is Moderate, anything else is Normal.
const (
	HighRiskAbove = 50
	ModerateAbove = 20
)

// Score sums the contribution of every decoded answer. The sum saturates at
// the int bounds instead of wrapping.
func Score(answers map[string]models.AnswerValue) int {
	total := 0
	for _, v := range answers {
		total = addSaturating(total, v.Contribution())
	}
	return total
}

func addSaturating(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// ScoreRaw decodes and scores a raw submission in one step.
func ScoreRaw(answers map[string]json.RawMessage) int {
	return Score(models.DecodeAnswers(answers))
}

// Categorize maps a score onto its result label.
func Categorize(score int) string {
	switch {
	case score > HighRiskAbove:
		return models.ResultHighRisk
	case score > ModerateAbove:
		return models.ResultModerate
	default:
		return models.ResultNormal
	}
}
