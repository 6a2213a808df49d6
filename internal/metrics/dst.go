package metrics

// DigitSpanAttempt is one recalled sequence.
type DigitSpanAttempt struct {
	Span      int     `json:"span"`
	Trial     int     `json:"trial"`
	Sequence  string  `json:"sequence"`
	Input     string  `json:"input"`
	Correct   bool    `json:"correct"`
	Timestamp float64 `json:"timestamp"`
}

type DigitSpanData struct {
	TestStartTime float64            `json:"testStartTime"`
	TestEndTime   float64            `json:"testEndTime"`
	InitialSpan   int                `json:"initialSpan"`
	Results       []DigitSpanAttempt `json:"results"`
}

const defaultInitialSpan = 3

// ScoreDigitSpan scores a round by the longest sequence recalled correctly.
// With no correct attempt the span is one below the shortest one tried.
func ScoreDigitSpan(data *DigitSpanData) *Result {
	initial := data.InitialSpan
	if initial <= 0 {
		initial = defaultInitialSpan
	}

	highest := initial - 1
	minAttempted := initial
	correct := 0
	for _, a := range data.Results {
		if a.Span < minAttempted {
			minAttempted = a.Span
		}
		if a.Correct {
			correct++
			if a.Span > highest {
				highest = a.Span
			}
		}
	}
	if correct == 0 && len(data.Results) > 0 {
		highest = minAttempted - 1
	}
	if highest < 0 {
		highest = 0
	}

	accuracy := 0.0
	if len(data.Results) > 0 {
		accuracy = round2(float64(correct) / float64(len(data.Results)))
	}
	return &Result{
		Score:    highest,
		Duration: elapsedSeconds(data.TestStartTime, data.TestEndTime),
		Measures: map[string]float64{
			"highestSpan":   float64(highest),
			"totalTrials":   float64(len(data.Results)),
			"correctTrials": float64(correct),
			"accuracy":      accuracy,
		},
	}
}
