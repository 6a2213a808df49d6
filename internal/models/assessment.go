package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result labels produced by the scoring rule.
const (
	ResultNormal   = "Normal"
	ResultModerate = "Moderate"
	ResultHighRisk = "High Risk"
)

// Assessment is one scored submission. UserID, QuestionnaireID and TaskID are
// plain ids without foreign keys so a record outlives all of its referents.
type Assessment struct {
	ID              int            `gorm:"primaryKey" json:"id"`
	UserID          int            `gorm:"index;not null" json:"userId"`
	QuestionnaireID *int           `gorm:"index" json:"questionnaireId"`
	TaskID          *int           `json:"taskId"`
	Date            time.Time      `gorm:"index;not null" json:"date"`
	Answers         datatypes.JSON `json:"answers"`
	Score           int            `json:"score"`
	Result          string         `gorm:"size:32" json:"result"`
	Analysis        *string        `json:"analysis"`

	// Failed batch analysis runs.
	AnalysisAttempts int `gorm:"not null;default:0" json:"-"`
}

// MaxAnalysisAttempts is how many failed batch runs a record gets before the
// batch stops picking it. On-demand analysis is still allowed.
const MaxAnalysisAttempts = 3

// AssessmentSummary is a record joined with its questionnaire title, as shown
// in a user's history.
type AssessmentSummary struct {
	ID                 int       `json:"id"`
	QuestionnaireID    *int      `json:"questionnaireId"`
	QuestionnaireTitle string    `json:"questionnaireTitle"`
	Date               time.Time `json:"date"`
	Score              int       `json:"score"`
	Result             string    `json:"result"`
	Analysis           *string   `json:"analysis"`
}
