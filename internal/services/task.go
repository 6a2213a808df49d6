package services

import (
	"context"
	"fmt"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
)

type TaskService struct {
	tasks          *repository.TaskRepository
	users          *repository.UserRepository
	questionnaires *repository.QuestionnaireRepository
	logs           *LogService
	log            *zap.Logger
	now            func() time.Time
}

func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository, questionnaires *repository.QuestionnaireRepository, logs *LogService, log *zap.Logger) *TaskService {
	return &TaskService{tasks: tasks, users: users, questionnaires: questionnaires, logs: logs, log: log, now: time.Now}
}

// Assign creates a Pending task. A pair may have only one open task.
func (s *TaskService) Assign(ctx context.Context, actor *Actor, userID, questionnaireID int, dueDate *time.Time) (*models.Task, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	q, err := s.questionnaires.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	open, err := s.tasks.HasOpen(ctx, userID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, models.ErrTaskAlreadyOpen
	}

	task := &models.Task{
		UserID:          userID,
		QuestionnaireID: questionnaireID,
		AssignedAt:      s.now().UTC(),
		Status:          models.TaskPending,
	}
	if dueDate != nil {
		d := dueDate.UTC()
		task.DueDate = &d
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logs.Info(ctx, actor, "AssignTask", fmt.Sprintf("Task:%d", task.ID),
		fmt.Sprintf("Assigned %q to %s", q.Title, user.Username))
	return task, nil
}

// Delete removes a task at any status and reports whether it existed.
func (s *TaskService) Delete(ctx context.Context, actor *Actor, taskID int) (bool, error) {
	found, err := s.tasks.Delete(ctx, taskID)
	if err != nil {
		return false, err
	}
	if found {
		s.logs.Info(ctx, actor, "DeleteTask", fmt.Sprintf("Task:%d", taskID), "Task deleted")
	}
	return found, nil
}

func (s *TaskService) ListAll(ctx context.Context) ([]models.TaskView, error) {
	return s.tasks.ListAll(ctx)
}

func (s *TaskService) ListForUser(ctx context.Context, userID int) ([]models.TaskView, error) {
	return s.tasks.ListForUser(ctx, userID)
}

// MarkOverdue flips Pending tasks past their due date to Overdue. Overdue
// tasks stay open and are still closed by a later submission.
func (s *TaskService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	n, err := s.tasks.MarkOverdue(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Marked tasks overdue", zap.Int64("count", n))
		s.logs.Info(ctx, nil, "MarkOverdue", "Tasks", fmt.Sprintf("%d task(s) marked overdue", n))
	}
	return int(n), nil
}
