package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"velum-go/internal/models"

	"gorm.io/datatypes"
)

func TestAnalysisService_ExportRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "bob", models.RoleUser)
	q := env.createQuestionnaire(t, "Sleep",
		choice(2, "How did you sleep?", "Badly", "Well"),
		models.Question{ID: 1, Text: "Anything else?", Type: models.Text},
	)

	if _, err := env.assessments.Submit(ctx, user.ID, q.ID, answers(t, `{"2": 1}`)); err != nil {
		t.Fatal(err)
	}

	table, err := env.analysis.ExportRows(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	wantCols := []string{"User", "Date", "Score", "Result", "How did you sleep?", "Anything else?"}
	if strings.Join(table.Columns, "|") != strings.Join(wantCols, "|") {
		t.Fatalf("Columns = %q, want %q", table.Columns, wantCols)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(table.Rows))
	}
	row := table.Rows[0]
	if len(row) != 6 {
		t.Errorf("row has %d cells, want 6", len(row))
	}
	if row["User"] != "bob" || row["Score"] != "1" || row["Result"] != models.ResultNormal {
		t.Errorf("fixed cells = %+v", row)
	}
	if row["How did you sleep?"] != "1" {
		t.Errorf("answer cell = %q, want 1", row["How did you sleep?"])
	}
	if cell, ok := row["Anything else?"]; !ok || cell != "" {
		t.Errorf("missing answer cell = %q (present %v), want blank", cell, ok)
	}
}

func TestAnalysisService_ExportKeepsUnreadableRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	q := env.createQuestionnaire(t, "Q", choice(1, "A", "x", "y"), choice(2, "A", "x", "y"))

	qID := q.ID
	broken := &models.Assessment{UserID: 77, QuestionnaireID: &qID, Date: time.Now().UTC(), Answers: datatypes.JSON(`[1,2]`), Score: 3, Result: models.ResultNormal}
	if err := env.db.Create(broken).Error; err != nil {
		t.Fatal(err)
	}

	table, err := env.analysis.ExportRows(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Columns[4:]; got[0] != "A (Q1)" || got[1] != "A (Q2)" {
		t.Errorf("duplicate question columns = %q", got)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(table.Rows))
	}
	row := table.Rows[0]
	if row["User"] != "Unknown" || row["A (Q1)"] != "" || row["A (Q2)"] != "" {
		t.Errorf("row = %+v", row)
	}

	data, err := env.analysis.ExportCSV(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || lines[0] != "User,Date,Score,Result,A (Q1),A (Q2)" {
		t.Errorf("csv = %q", data)
	}

	if _, err := env.analysis.ExportRows(ctx, 404); !errors.Is(err, models.ErrQuestionnaireNotFound) {
		t.Errorf("unknown questionnaire error = %v", err)
	}
}

func TestAnalysisService_OverallStatsAndHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	alice := env.createUser(t, "alice", models.RoleUser)
	q := env.createQuestionnaire(t, "GAD-2", choice(1, "Worry", "No", "Yes"))

	for _, a := range []struct {
		user int
		body string
	}{
		{alice.ID, `{"1": 10}`},
		{alice.ID, `{"1": 30}`},
		{admin.ID, `{"1": 50}`},
	} {
		if _, err := env.assessments.Submit(ctx, a.user, q.ID, answers(t, a.body)); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := env.analysis.OverallStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalAssessments != 2 || stats.TotalUsers != 1 {
		t.Errorf("totals = %d assessments / %d users, want 2 / 1", stats.TotalAssessments, stats.TotalUsers)
	}
	if len(stats.QuestionnaireStats) != 1 {
		t.Fatalf("QuestionnaireStats = %+v", stats.QuestionnaireStats)
	}
	if s := stats.QuestionnaireStats[0]; s.Title != "GAD-2" || s.Count != 2 || s.AverageScore != 20 {
		t.Errorf("stat = %+v", s)
	}

	history, err := env.analysis.UserHistory(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if history.Username != "alice" || len(history.History) != 2 {
		t.Fatalf("history = %+v", history)
	}
	if history.History[0].Score != 30 {
		t.Errorf("history not newest first: %+v", history.History)
	}

	if _, err := env.analysis.UserHistory(ctx, 999); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("unknown user error = %v", err)
	}
}

func TestAnalysisService_AnalyzeAssessment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "carol", models.RoleUser)
	q := env.createQuestionnaire(t, "PHQ-9", choice(1, "Mood", "0", "1"))
	if err := env.db.Model(q).Update("interpretation_guide", "0-4 minimal").Error; err != nil {
		t.Fatal(err)
	}
	rec, err := env.assessments.Submit(ctx, user.ID, q.ID, answers(t, `{"1": 3}`))
	if err != nil {
		t.Fatal(err)
	}

	env.ai.err = models.ErrAIUnavailable
	if _, err := env.analysis.AnalyzeAssessment(ctx, nil, rec.ID); !errors.Is(err, models.ErrAIUnavailable) {
		t.Fatalf("AnalyzeAssessment() error = %v", err)
	}
	var stored models.Assessment
	env.db.First(&stored, rec.ID)
	if stored.Analysis != nil {
		t.Fatalf("analysis written despite AI failure: %q", *stored.Analysis)
	}

	env.ai.err = nil
	env.ai.reply = "  Minimal symptoms.  "
	got, err := env.analysis.AnalyzeAssessment(ctx, nil, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Minimal symptoms." {
		t.Errorf("analysis = %q", got)
	}
	prompt := env.ai.lastCall()[1].Content
	for _, want := range []string{"carol", "PHQ-9", "Score: 3", "Normal", "0-4 minimal"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	env.db.First(&stored, rec.ID)
	if stored.Analysis == nil || *stored.Analysis != "Minimal symptoms." || stored.Score != 3 {
		t.Errorf("stored = %+v", stored)
	}
}

func TestAnalysisService_RunBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "dave", models.RoleUser)
	q := env.createQuestionnaire(t, "Scale", choice(1, "A", "x"))

	for i := 0; i < 3; i++ {
		if _, err := env.assessments.Submit(ctx, user.ID, q.ID, answers(t, `{"1": 1}`)); err != nil {
			t.Fatal(err)
		}
	}
	// Orphaned: its user does not exist.
	if _, err := env.assessments.Submit(ctx, 4242, q.ID, answers(t, `{"1": 1}`)); err != nil {
		t.Fatal(err)
	}

	env.ai.reply = "ok"
	n, err := env.analysis.RunBatch(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("first batch analyzed %d, want 2", n)
	}
	n, err = env.analysis.RunBatch(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("second batch analyzed %d, want 1 (orphan skipped)", n)
	}

	var remaining int64
	env.db.Model(&models.Assessment{}).Where("analysis IS NULL").Count(&remaining)
	if remaining != 1 {
		t.Errorf("%d records left unanalyzed, want only the orphan", remaining)
	}

	env.ai.err = errors.New("boom")
	if _, err := env.assessments.Submit(ctx, user.ID, q.ID, answers(t, `{"1": 1}`)); err != nil {
		t.Fatal(err)
	}
	n, err = env.analysis.RunBatch(ctx, 5)
	if err != nil || n != 0 {
		t.Errorf("failing batch = %d, %v; want 0, nil", n, err)
	}
}

func TestAnalysisService_RunBatchFailuresDoNotBlockQueue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "erin", models.RoleUser)
	q := env.createQuestionnaire(t, "Scale", choice(1, "A", "x"))

	stuck, err := env.assessments.Submit(ctx, user.ID, q.ID, answers(t, `{"1": 1}`))
	if err != nil {
		t.Fatal(err)
	}

	env.ai.err = errors.New("boom")
	if n, err := env.analysis.RunBatch(ctx, 1); err != nil || n != 0 {
		t.Fatalf("failing batch = %d, %v; want 0, nil", n, err)
	}

	fresh, err := env.assessments.Submit(ctx, user.ID, q.ID, answers(t, `{"1": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	env.ai.err = nil
	env.ai.reply = "ok"
	if n, err := env.analysis.RunBatch(ctx, 1); err != nil || n != 1 {
		t.Fatalf("batch after failure = %d, %v; want 1, nil", n, err)
	}

	var got models.Assessment
	if err := env.db.First(&got, fresh.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Analysis == nil || *got.Analysis != "ok" {
		t.Errorf("newer record analysis = %v, want ok", got.Analysis)
	}

	env.db.Model(&models.Assessment{}).Where("id = ?", stuck.ID).Update("analysis_attempts", models.MaxAnalysisAttempts)
	if n, err := env.analysis.RunBatch(ctx, 5); err != nil || n != 0 {
		t.Errorf("batch with only exhausted records = %d, %v; want 0, nil", n, err)
	}
}
