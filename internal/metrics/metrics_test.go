package metrics

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"velum-go/internal/models"
)

func TestScoreCPT(t *testing.T) {
	data := &CPTData{
		TestStartTime: 1000,
		TestEndTime:   61000,
		StimuliPresented: []CPTStimulus{
			{Value: "X", IsTarget: true},
			{Value: "A"},
			{Value: "X", IsTarget: true},
			{Value: "B"},
			{Value: "X", IsTarget: true},
			{Value: "C"},
			{Value: "D"},
			{Value: "X", IsTarget: true},
		},
		Responses: []CPTResponse{
			{Stimulus: "X", IsTarget: true, ResponseTime: 300},
			{Stimulus: "X", IsTarget: true, ResponseTime: 500},
			{Stimulus: "X", IsTarget: true, ResponseTime: 400},
			{Stimulus: "B", ResponseTime: 250},
		},
	}

	got := ScoreCPT(data)
	// detection 3/4, commission 1/4
	if got.Score != 56 {
		t.Errorf("Score = %d, want 56", got.Score)
	}
	if got.Duration != 60 {
		t.Errorf("Duration = %v, want 60", got.Duration)
	}
	if got.Measures["omissionErrors"] != 1 || got.Measures["commissionErrors"] != 1 {
		t.Errorf("measures = %v", got.Measures)
	}
	if got.Measures["meanReactionTime"] != 400 {
		t.Errorf("meanReactionTime = %v", got.Measures["meanReactionTime"])
	}
	if sd := ReactionTimeSD(data); math.Abs(sd-81.65) > 0.01 {
		t.Errorf("ReactionTimeSD = %v", sd)
	}
}

func TestScoreCPT_Empty(t *testing.T) {
	got := ScoreCPT(&CPTData{})
	if got.Score != 0 || got.Duration != 0 || got.Measures["detectionRate"] != 0 {
		t.Errorf("empty round = %+v", got)
	}
}

func TestScoreDigitSpan(t *testing.T) {
	tests := []struct {
		name string
		data DigitSpanData
		want int
	}{
		{"no attempts", DigitSpanData{}, 2},
		{"reached five", DigitSpanData{Results: []DigitSpanAttempt{
			{Span: 3, Correct: true}, {Span: 4, Correct: true}, {Span: 5, Correct: true}, {Span: 6},
		}}, 5},
		{"all failed", DigitSpanData{InitialSpan: 4, Results: []DigitSpanAttempt{{Span: 4}, {Span: 3}}}, 2},
		{"never below zero", DigitSpanData{Results: []DigitSpanAttempt{{Span: 0}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreDigitSpan(&tt.data); got.Score != tt.want {
				t.Errorf("Score = %d, want %d", got.Score, tt.want)
			}
		})
	}
}

func TestScoreTrailMaking(t *testing.T) {
	got := ScoreTrailMaking(&TrailMakingData{
		PartACompletionTime: 30000,
		PartBCompletionTime: 75000,
		PartAErrors:         1,
		PartBErrors:         2,
	})
	// 300 - 30 - 75 - 3*5
	if got.Score != 180 {
		t.Errorf("Score = %d, want 180", got.Score)
	}
	if got.Duration != 105 {
		t.Errorf("Duration = %v, want 105", got.Duration)
	}
	if got.Measures["bToARatio"] != 2.5 {
		t.Errorf("bToARatio = %v", got.Measures["bToARatio"])
	}

	slow := ScoreTrailMaking(&TrailMakingData{PartACompletionTime: 200000, PartBCompletionTime: 200000})
	if slow.Score != 0 {
		t.Errorf("slow score = %d, want 0", slow.Score)
	}
}

func TestEvaluate(t *testing.T) {
	raw, _ := json.Marshal(DigitSpanData{Results: []DigitSpanAttempt{{Span: 3, Correct: true}}})
	got, err := Evaluate(GameDigitSpan, raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 3 {
		t.Errorf("Score = %d", got.Score)
	}

	for name, tc := range map[string]struct {
		game string
		raw  string
	}{
		"unknown game": {"tetris", `{}`},
		"empty data":   {GameCPT, ``},
		"bad json":     {GameTrailMaking, `{"partAErrors": "many"}`},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Evaluate(tc.game, json.RawMessage(tc.raw)); !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
	if !Supported(GameCPT) || Supported("tetris") {
		t.Error("Supported() mismatch")
	}
}
