package repository

import (
	"context"
	"time"

	"velum-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, notFound(err, models.ErrTaskNotFound)
	}
	return &task, nil
}

// Delete removes a task at any status. Assessments that reference it keep
// the id.
func (r *TaskRepository) Delete(ctx context.Context, id int) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	return res.RowsAffected > 0, res.Error
}

// HasOpen reports whether the user already has a task for the questionnaire
// that is not Completed.
func (r *TaskRepository) HasOpen(ctx context.Context, userID, questionnaireID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND questionnaire_id = ? AND status <> ?", userID, questionnaireID, models.TaskCompleted).
		Count(&count).Error
	return count > 0, err
}

// OpenTasks lists the open tasks for a pair, oldest assignment first. On
// PostgreSQL the rows are locked for the rest of the transaction.
func (r *TaskRepository) OpenTasks(ctx context.Context, userID, questionnaireID int) ([]models.Task, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND questionnaire_id = ? AND status <> ?", userID, questionnaireID, models.TaskCompleted).
		Order("assigned_at ASC, id ASC")
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var tasks []models.Task
	return tasks, q.Find(&tasks).Error
}

// Complete marks the task Completed unless it already is. It reports false
// when another writer closed the task first.
func (r *TaskRepository) Complete(ctx context.Context, id int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status <> ?", id, models.TaskCompleted).
		Update("status", models.TaskCompleted)
	return res.RowsAffected == 1, res.Error
}

// MarkOverdue moves Pending tasks whose due date has passed to Overdue.
func (r *TaskRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.TaskPending, now).
		Update("status", models.TaskOverdue)
	return res.RowsAffected, res.Error
}

func (r *TaskRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("user_tasks AS t").
		Select("t.*, COALESCE(u.username, '') AS username, COALESCE(q.title, 'Unknown') AS questionnaire_title").
		Joins("LEFT JOIN users u ON u.id = t.user_id").
		Joins("LEFT JOIN questionnaires q ON q.id = t.questionnaire_id")
}

// ListAll returns every task, newest assignment first.
func (r *TaskRepository) ListAll(ctx context.Context) ([]models.TaskView, error) {
	var tasks []models.TaskView
	return tasks, r.views(ctx).Order("t.assigned_at DESC, t.id DESC").Scan(&tasks).Error
}

// ListForUser returns the user's tasks, newest assignment first.
func (r *TaskRepository) ListForUser(ctx context.Context, userID int) ([]models.TaskView, error) {
	var tasks []models.TaskView
	return tasks, r.views(ctx).Where("t.user_id = ?", userID).Order("t.assigned_at DESC, t.id DESC").Scan(&tasks).Error
}

// Recent returns the latest assignments.
func (r *TaskRepository) Recent(ctx context.Context, limit int) ([]models.TaskView, error) {
	var tasks []models.TaskView
	return tasks, r.views(ctx).Order("t.assigned_at DESC, t.id DESC").Limit(limit).Scan(&tasks).Error
}

func (r *TaskRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	return count, r.db.WithContext(ctx).Model(&models.Task{}).Where("status = ?", status).Count(&count).Error
}
