package metrics

import "math"

// TrailMakingData is the raw log of a Trail Making round. Times are in
// milliseconds.
type TrailMakingData struct {
	TestStartTime       float64 `json:"testStartTime"`
	TestEndTime         float64 `json:"testEndTime"`
	PartACompletionTime float64 `json:"partACompletionTime"`
	PartBCompletionTime float64 `json:"partBCompletionTime"`
	PartAErrors         int     `json:"partAErrors"`
	PartBErrors         int     `json:"partBErrors"`
}

// Seconds allowed before the trail score bottoms out, and the cost of one
// wrong click in seconds.
const (
	trailTimeLimit    = 300.0
	trailErrorPenalty = 5.0
)

// ScoreTrailMaking rewards speed: the unused part of a five minute limit,
// minus a penalty per error, floored at zero.
func ScoreTrailMaking(data *TrailMakingData) *Result {
	a := data.PartACompletionTime / 1000
	b := data.PartBCompletionTime / 1000
	errs := data.PartAErrors + data.PartBErrors

	score := trailTimeLimit - a - b - trailErrorPenalty*float64(errs)
	if score < 0 {
		score = 0
	}

	duration := elapsedSeconds(data.TestStartTime, data.TestEndTime)
	if duration == 0 {
		duration = round2(a + b)
	}
	return &Result{
		Score:    int(math.Round(score)),
		Duration: duration,
		Measures: map[string]float64{
			"partATime":   round2(a),
			"partBTime":   round2(b),
			"partAErrors": float64(data.PartAErrors),
			"partBErrors": float64(data.PartBErrors),
			"bToARatio":   round2(BToARatio(data)),
		},
	}
}

// BToARatio is part B time over part A time, 0 when part A has no time.
func BToARatio(data *TrailMakingData) float64 {
	if data.PartACompletionTime <= 0 {
		return 0
	}
	return data.PartBCompletionTime / data.PartACompletionTime
}
