package metrics

import (
	"math"
)

// CPTStimulus is one letter shown during a continuous performance test.
type CPTStimulus struct {
	Value       string  `json:"value"`
	IsTarget    bool    `json:"isTarget"`
	PresentedAt float64 `json:"presentedAt"`
}

// CPTResponse is one key press. ResponseTime is in milliseconds.
type CPTResponse struct {
	Stimulus      string  `json:"stimulus"`
	IsTarget      bool    `json:"isTarget"`
	ResponseTime  float64 `json:"responseTime"`
	StimulusIndex int     `json:"stimulusIndex"`
}

// CPTData is the raw log the client posts after a CPT round.
type CPTData struct {
	TestStartTime    float64       `json:"testStartTime"`
	TestEndTime      float64       `json:"testEndTime"`
	StimuliPresented []CPTStimulus `json:"stimuliPresented"`
	Responses        []CPTResponse `json:"responses"`
}

// ScoreCPT scores a round as 100 x detection rate x (1 - commission rate).
func ScoreCPT(data *CPTData) *Result {
	detection := DetectionRate(data)
	commission := CommissionErrorRate(data)
	return &Result{
		Score:    int(math.Round(100 * detection * (1 - commission))),
		Duration: elapsedSeconds(data.TestStartTime, data.TestEndTime),
		Measures: map[string]float64{
			"correctDetections":   float64(CorrectDetections(data)),
			"commissionErrors":    float64(CommissionErrors(data)),
			"omissionErrors":      float64(OmissionErrors(data)),
			"detectionRate":       round2(detection),
			"commissionErrorRate": round2(commission),
			"omissionErrorRate":   round2(OmissionErrorRate(data)),
			"meanReactionTime":    round2(MeanReactionTime(data)),
			"reactionTimeSD":      round2(ReactionTimeSD(data)),
		},
	}
}

func CorrectDetections(data *CPTData) int {
	n := 0
	for _, r := range data.Responses {
		if r.IsTarget {
			n++
		}
	}
	return n
}

func CommissionErrors(data *CPTData) int {
	return len(data.Responses) - CorrectDetections(data)
}

// OmissionErrors counts targets that drew no response.
func OmissionErrors(data *CPTData) int {
	missed := targets(data) - CorrectDetections(data)
	if missed < 0 {
		return 0
	}
	return missed
}

func targets(data *CPTData) int {
	n := 0
	for _, s := range data.StimuliPresented {
		if s.IsTarget {
			n++
		}
	}
	return n
}

func targetReactionTimes(data *CPTData) []float64 {
	var rts []float64
	for _, r := range data.Responses {
		if r.IsTarget {
			rts = append(rts, r.ResponseTime)
		}
	}
	return rts
}

func MeanReactionTime(data *CPTData) float64 {
	rts := targetReactionTimes(data)
	if len(rts) == 0 {
		return 0
	}
	var sum float64
	for _, rt := range rts {
		sum += rt
	}
	return sum / float64(len(rts))
}

// ReactionTimeSD is the population standard deviation of hit reaction times.
func ReactionTimeSD(data *CPTData) float64 {
	rts := targetReactionTimes(data)
	if len(rts) <= 1 {
		return 0
	}
	avg := MeanReactionTime(data)
	var sumSq float64
	for _, rt := range rts {
		d := rt - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(rts)))
}

func DetectionRate(data *CPTData) float64 {
	total := targets(data)
	if total == 0 {
		return 0
	}
	rate := float64(CorrectDetections(data)) / float64(total)
	return math.Min(rate, 1)
}

func OmissionErrorRate(data *CPTData) float64 {
	total := targets(data)
	if total == 0 {
		return 0
	}
	return float64(OmissionErrors(data)) / float64(total)
}

func CommissionErrorRate(data *CPTData) float64 {
	nonTargets := len(data.StimuliPresented) - targets(data)
	if nonTargets == 0 {
		return 0
	}
	return math.Min(float64(CommissionErrors(data))/float64(nonTargets), 1)
}
