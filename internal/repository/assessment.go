package repository

import (
	"context"
	"time"

	"velum-go/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionnaireStat aggregates the assessments of one questionnaire.
type QuestionnaireStat struct {
	QuestionnaireID int     `json:"questionnaireId"`
	Title           string  `json:"title"`
	Count           int64   `json:"count"`
	AverageScore    float64 `json:"averageScore"`
}

// ExportSource is one assessment with the submitting user's name.
type ExportSource struct {
	ID       int
	Username string
	Date     time.Time
	Score    int
	Result   string
	Answers  datatypes.JSON
}

// AnalysisCandidate is an unanalyzed assessment whose user and questionnaire
// both still exist.
type AnalysisCandidate struct {
	ID                  int
	Score               int
	Result              string
	Username            string
	QuestionnaireTitle  string
	InterpretationGuide string
}

// RecentAssessment is a dashboard row.
type RecentAssessment struct {
	ID                 int       `json:"id"`
	UserName           string    `json:"userName"`
	QuestionnaireTitle string    `json:"questionnaireTitle"`
	Score              int       `json:"score"`
	Date               time.Time `json:"date"`
	Result             string    `json:"result"`
}

type AssessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *AssessmentRepository) WithTx(tx *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: tx}
}

func (r *AssessmentRepository) Create(ctx context.Context, a *models.Assessment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id int) (*models.Assessment, error) {
	var a models.Assessment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err, models.ErrAssessmentNotFound)
	}
	return &a, nil
}

// ListForUser returns the user's history, newest first. Records whose
// questionnaire was deleted report the title "Unknown".
func (r *AssessmentRepository) ListForUser(ctx context.Context, userID int) ([]models.AssessmentSummary, error) {
	var out []models.AssessmentSummary
	err := r.db.WithContext(ctx).Table("assessments AS a").
		Select("a.id, a.questionnaire_id, COALESCE(q.title, 'Unknown') AS questionnaire_title, a.date, a.score, a.result, a.analysis").
		Joins("LEFT JOIN questionnaires q ON q.id = a.questionnaire_id").
		Where("a.user_id = ?", userID).
		Order("a.date DESC, a.id DESC").
		Scan(&out).Error
	return out, err
}

// ListForExport returns every record of a questionnaire, newest first.
func (r *AssessmentRepository) ListForExport(ctx context.Context, questionnaireID int) ([]ExportSource, error) {
	var out []ExportSource
	err := r.db.WithContext(ctx).Table("assessments AS a").
		Select("a.id, COALESCE(u.username, 'Unknown') AS username, a.date, a.score, a.result, a.answers").
		Joins("LEFT JOIN users u ON u.id = a.user_id").
		Where("a.questionnaire_id = ?", questionnaireID).
		Order("a.date DESC, a.id DESC").
		Scan(&out).Error
	return out, err
}

// PendingAnalysis returns up to limit committed records without analysis.
// Records with fewer failed attempts come first, then the oldest; records
// that reached models.MaxAnalysisAttempts are left out.
func (r *AssessmentRepository) PendingAnalysis(ctx context.Context, limit int) ([]AnalysisCandidate, error) {
	var out []AnalysisCandidate
	err := r.db.WithContext(ctx).Table("assessments AS a").
		Select("a.id, a.score, a.result, u.username, q.title AS questionnaire_title, q.interpretation_guide").
		Joins("JOIN users u ON u.id = a.user_id").
		Joins("JOIN questionnaires q ON q.id = a.questionnaire_id").
		Where("a.analysis IS NULL OR a.analysis = ''").
		Where("a.analysis_attempts < ?", models.MaxAnalysisAttempts).
		Order("a.analysis_attempts ASC, a.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// Candidate loads a single record in the same shape as PendingAnalysis.
// Missing users or questionnaires yield empty names.
func (r *AssessmentRepository) Candidate(ctx context.Context, id int) (*AnalysisCandidate, error) {
	var out []AnalysisCandidate
	err := r.db.WithContext(ctx).Table("assessments AS a").
		Select("a.id, a.score, a.result, COALESCE(u.username, '') AS username, COALESCE(q.title, '') AS questionnaire_title, COALESCE(q.interpretation_guide, '') AS interpretation_guide").
		Joins("LEFT JOIN users u ON u.id = a.user_id").
		Joins("LEFT JOIN questionnaires q ON q.id = a.questionnaire_id").
		Where("a.id = ?", id).
		Limit(1).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, models.ErrAssessmentNotFound
	}
	return &out[0], nil
}

// SetAnalysis stores the narrative; no other column is touched.
func (r *AssessmentRepository) SetAnalysis(ctx context.Context, id int, analysis string) error {
	res := r.db.WithContext(ctx).Model(&models.Assessment{}).Where("id = ?", id).Update("analysis", analysis)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrAssessmentNotFound
	}
	return nil
}

// RecordAnalysisFailure counts one failed batch analysis of the record.
func (r *AssessmentRepository) RecordAnalysisFailure(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("id = ?", id).
		UpdateColumn("analysis_attempts", gorm.Expr("analysis_attempts + 1")).Error
}

// nonAdmin scopes a query over "assessments AS a" to records of users that
// are not administrators. Records of deleted users are kept.
func nonAdmin(db *gorm.DB) *gorm.DB {
	return db.Joins("LEFT JOIN users u ON u.id = a.user_id").
		Where("u.role IS NULL OR u.role <> ?", models.RoleAdmin)
}

// CountNonAdmin counts assessments submitted by non-admin users.
func (r *AssessmentRepository) CountNonAdmin(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("assessments AS a").Scopes(nonAdmin).Count(&count).Error
	return count, err
}

// StatsByQuestionnaire groups non-admin assessments per questionnaire.
// Records of deleted questionnaires report the title "Unknown".
func (r *AssessmentRepository) StatsByQuestionnaire(ctx context.Context) ([]QuestionnaireStat, error) {
	var out []QuestionnaireStat
	err := r.db.WithContext(ctx).Table("assessments AS a").
		Select("COALESCE(a.questionnaire_id, 0) AS questionnaire_id, COALESCE(MAX(q.title), 'Unknown') AS title, COUNT(*) AS count, AVG(a.score) AS average_score").
		Joins("LEFT JOIN questionnaires q ON q.id = a.questionnaire_id").
		Scopes(nonAdmin).
		Group("a.questionnaire_id").
		Order("questionnaire_id").
		Scan(&out).Error
	return out, err
}

// Recent returns the latest submissions for the dashboard.
func (r *AssessmentRepository) Recent(ctx context.Context, limit int) ([]RecentAssessment, error) {
	var out []RecentAssessment
	err := r.db.WithContext(ctx).Table("assessments AS a").
		Select("a.id, COALESCE(u.username, 'Unknown') AS user_name, COALESCE(q.title, 'Unknown') AS questionnaire_title, a.score, a.date, COALESCE(a.result, 'N/A') AS result").
		Joins("LEFT JOIN users u ON u.id = a.user_id").
		Joins("LEFT JOIN questionnaires q ON q.id = a.questionnaire_id").
		Order("a.date DESC, a.id DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
