package repository

import (
	"context"

	"velum-go/internal/models"

	"gorm.io/gorm"
)

type QuestionnaireRepository struct {
	db *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

func (r *QuestionnaireRepository) List(ctx context.Context) ([]models.Questionnaire, error) {
	var qs []models.Questionnaire
	return qs, r.db.WithContext(ctx).Order("id ASC").Find(&qs).Error
}

func (r *QuestionnaireRepository) GetByID(ctx context.Context, id int) (*models.Questionnaire, error) {
	var q models.Questionnaire
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, notFound(err, models.ErrQuestionnaireNotFound)
	}
	return &q, nil
}

func (r *QuestionnaireRepository) Create(ctx context.Context, q *models.Questionnaire) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuestionnaireRepository) Save(ctx context.Context, q *models.Questionnaire) error {
	return r.db.WithContext(ctx).Save(q).Error
}

// Delete removes the template only; assessments keep their questionnaire id.
func (r *QuestionnaireRepository) Delete(ctx context.Context, id int) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Questionnaire{}, id)
	return res.RowsAffected > 0, res.Error
}
