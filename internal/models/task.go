package models

import "time"

// Task status values. Any status other than Completed counts as open.
const (
	TaskPending   = "Pending"
	TaskCompleted = "Completed"
	TaskOverdue   = "Overdue"
)

// Task assigns a questionnaire to a user.
type Task struct {
	ID              int        `gorm:"primaryKey" json:"id"`
	UserID          int        `gorm:"index:idx_task_user_questionnaire;not null" json:"userId"`
	QuestionnaireID int        `gorm:"index:idx_task_user_questionnaire;not null" json:"questionnaireId"`
	AssignedAt      time.Time  `gorm:"not null" json:"assignedAt"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	Status          string     `gorm:"size:16;not null;index" json:"status"`
}

func (Task) TableName() string {
	return "user_tasks"
}

// IsOpen reports whether a submission can still close this task.
func (t *Task) IsOpen() bool {
	return t.Status != TaskCompleted
}

// TaskView is a task joined with the names an admin list displays.
type TaskView struct {
	Task
	Username           string `json:"username"`
	QuestionnaireTitle string `json:"questionnaireTitle"`
}
