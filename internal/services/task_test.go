package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"
)

func TestTaskService_Assign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "erin", models.RoleUser)
	q := env.createQuestionnaire(t, "PSS", choice(1, "Stress", "Low", "High"))

	loc := time.FixedZone("UTC+8", 8*60*60)
	due := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	task, err := env.tasks.Assign(ctx, nil, user.ID, q.ID, &due)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if task.Status != models.TaskPending || task.AssignedAt.IsZero() {
		t.Errorf("task = %+v", task)
	}
	if task.DueDate == nil || task.DueDate.Location() != time.UTC || !task.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v in UTC", task.DueDate, due)
	}

	if _, err := env.tasks.Assign(ctx, nil, user.ID, q.ID, nil); !errors.Is(err, models.ErrTaskAlreadyOpen) {
		t.Errorf("second Assign() error = %v, want ErrTaskAlreadyOpen", err)
	}
	if _, err := env.tasks.Assign(ctx, nil, 999, q.ID, nil); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("Assign() to unknown user = %v", err)
	}
	if _, err := env.tasks.Assign(ctx, nil, user.ID, 999, nil); !errors.Is(err, models.ErrQuestionnaireNotFound) {
		t.Errorf("Assign() of unknown questionnaire = %v", err)
	}

	// Completing the task frees the pair for a new assignment.
	if _, err := env.assessments.Submit(ctx, user.ID, q.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := env.tasks.Assign(ctx, nil, user.ID, q.ID, nil); err != nil {
		t.Errorf("Assign() after completion error = %v", err)
	}

	mine, err := env.tasks.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 || mine[0].QuestionnaireTitle != "PSS" || mine[0].Username != "erin" {
		t.Errorf("ListForUser() = %+v", mine)
	}

	logs, err := env.logs.List(ctx, repository.LogFilter{Search: "AssignTask"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Errorf("%d AssignTask log entries, want 2", len(logs))
	}
}

func TestTaskService_DeleteKeepsAssessments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "frank", models.RoleUser)
	q := env.createQuestionnaire(t, "PSS", choice(1, "Stress", "Low", "High"))

	task, err := env.tasks.Assign(ctx, nil, user.ID, q.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := env.assessments.Submit(ctx, user.ID, q.ID, nil)
	if err != nil {
		t.Fatal(err)
	}

	found, err := env.tasks.Delete(ctx, nil, task.ID)
	if err != nil || !found {
		t.Fatalf("Delete() = %v, %v", found, err)
	}
	found, err = env.tasks.Delete(ctx, nil, task.ID)
	if err != nil || found {
		t.Errorf("second Delete() = %v, %v; want false", found, err)
	}

	var stored models.Assessment
	if err := env.db.First(&stored, rec.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.TaskID == nil || *stored.TaskID != task.ID {
		t.Errorf("TaskID = %v, want dangling %d", stored.TaskID, task.ID)
	}
}

func TestTaskService_MarkOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	late := &models.Task{UserID: 1, QuestionnaireID: 1, AssignedAt: past, DueDate: &past, Status: models.TaskPending}
	onTime := &models.Task{UserID: 1, QuestionnaireID: 2, AssignedAt: past, DueDate: &future, Status: models.TaskPending}
	noDue := &models.Task{UserID: 1, QuestionnaireID: 3, AssignedAt: past, Status: models.TaskPending}
	for _, task := range []*models.Task{late, onTime, noDue} {
		if err := env.db.Create(task).Error; err != nil {
			t.Fatal(err)
		}
	}

	n, err := env.tasks.MarkOverdue(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("MarkOverdue() = %d, %v; want 1", n, err)
	}

	// Overdue tasks are still closed by a submission.
	rec, err := env.assessments.Submit(ctx, 1, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.TaskID == nil || *rec.TaskID != late.ID {
		t.Errorf("TaskID = %v, want %d", rec.TaskID, late.ID)
	}
}
