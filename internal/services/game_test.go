package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"velum-go/internal/models"
)

func TestGameService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	kim := env.createUser(t, "kim", models.RoleUser)
	lee := env.createUser(t, "lee", models.RoleUser)

	for _, s := range []struct {
		user  int
		game  string
		score int
	}{
		{kim.ID, "stroop", 40},
		{lee.ID, "stroop", 90},
		{kim.ID, "stroop", 70},
		{kim.ID, "n-back", 10},
	} {
		if _, err := env.games.SubmitScore(ctx, s.user, s.game, s.score, 12.5); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := env.games.SubmitScore(ctx, kim.ID, " ", 1, 1); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("blank game name error = %v", err)
	}
	if _, err := env.games.SubmitScore(ctx, kim.ID, "stroop", 1, -1); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("negative duration error = %v", err)
	}

	mine, err := env.games.MyScores(ctx, kim.ID)
	if err != nil || len(mine) != 3 {
		t.Fatalf("MyScores() = %d, %v", len(mine), err)
	}
	if mine[0].GameName != "n-back" {
		t.Errorf("MyScores() not latest first: %+v", mine)
	}

	top, err := env.games.Leaderboard(ctx, "stroop", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].Username != "lee" || top[0].Score != 90 || top[1].Score != 70 {
		t.Errorf("Leaderboard() = %+v", top)
	}

	all, err := env.games.All(ctx)
	if err != nil || len(all) != 4 {
		t.Errorf("All() = %d, %v", len(all), err)
	}
}

func TestGameService_SubmitTrial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	kim := env.createUser(t, "kim", models.RoleUser)

	raw := json.RawMessage(`{"partACompletionTime": 30000, "partBCompletionTime": 60000, "partAErrors": 0, "partBErrors": 1}`)
	gs, err := env.games.SubmitTrial(ctx, kim.ID, " trail-making ", raw)
	if err != nil {
		t.Fatalf("SubmitTrial() error = %v", err)
	}
	if gs.GameName != "trail-making" || gs.Score != 205 || gs.Duration != 90 {
		t.Errorf("score = %+v", gs)
	}
	var measures map[string]float64
	if err := json.Unmarshal(gs.Measures, &measures); err != nil {
		t.Fatal(err)
	}
	if measures["bToARatio"] != 2 {
		t.Errorf("measures = %v", measures)
	}

	if _, err := env.games.SubmitTrial(ctx, kim.ID, "stroop", raw); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("unsupported game error = %v", err)
	}

	mine, _ := env.games.MyScores(ctx, kim.ID)
	if len(mine) != 1 {
		t.Errorf("stored %d scores, want 1", len(mine))
	}
}
