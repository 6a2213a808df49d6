package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"
	"velum-go/internal/scoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentService scores submissions and links them to the task they
// complete.
type AssessmentService struct {
	db             *gorm.DB
	assessments    *repository.AssessmentRepository
	tasks          *repository.TaskRepository
	questionnaires *repository.QuestionnaireRepository
	logs           *LogService
	strict         func() bool
	log            *zap.Logger
	now            func() time.Time
}

// NewAssessmentService builds the service. strict reports, per call, whether
// answers must be validated against the questionnaire; nil means never.
func NewAssessmentService(db *gorm.DB, assessments *repository.AssessmentRepository, tasks *repository.TaskRepository,
	questionnaires *repository.QuestionnaireRepository, logs *LogService, strict func() bool, log *zap.Logger) *AssessmentService {
	if strict == nil {
		strict = func() bool { return false }
	}
	return &AssessmentService{
		db:             db,
		assessments:    assessments,
		tasks:          tasks,
		questionnaires: questionnaires,
		logs:           logs,
		strict:         strict,
		log:            log,
		now:            time.Now,
	}
}

// Submit scores the answers, stores the record and closes the user's oldest
// open task for the questionnaire, all in one transaction.
func (s *AssessmentService) Submit(ctx context.Context, userID, questionnaireID int, answers map[string]json.RawMessage) (*models.Assessment, error) {
	if answers == nil {
		answers = map[string]json.RawMessage{}
	}
	decoded := models.DecodeAnswers(answers)

	if s.strict() {
		if err := s.validate(ctx, questionnaireID, decoded); err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidAnswerFormat, err)
	}

	score := scoring.Score(decoded)
	qID := questionnaireID
	record := &models.Assessment{
		UserID:          userID,
		QuestionnaireID: &qID,
		Date:            s.now().UTC(),
		Answers:         datatypes.JSON(raw),
		Score:           score,
		Result:          scoring.Categorize(score),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		open, err := tasks.OpenTasks(ctx, userID, questionnaireID)
		if err != nil {
			return err
		}
		for _, t := range open {
			closed, err := tasks.Complete(ctx, t.ID)
			if err != nil {
				return err
			}
			if closed {
				id := t.ID
				record.TaskID = &id
				break
			}
		}
		return s.assessments.WithTx(tx).Create(ctx, record)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	fields := []zap.Field{
		zap.Int("assessmentID", record.ID),
		zap.Int("userID", userID),
		zap.Int("questionnaireID", questionnaireID),
		zap.Int("score", record.Score),
	}
	if record.TaskID != nil {
		fields = append(fields, zap.Int("taskID", *record.TaskID))
	}
	s.log.Info("Assessment submitted", fields...)
	s.logs.Info(ctx, &Actor{UserID: userID}, "SubmitAssessment", fmt.Sprintf("Assessment:%d", record.ID),
		fmt.Sprintf("Assessment submitted (score %d, %s)", record.Score, record.Result))
	return record, nil
}

// validate checks every answer against its question.
func (s *AssessmentService) validate(ctx context.Context, questionnaireID int, answers map[string]models.AnswerValue) error {
	q, err := s.questionnaires.GetByID(ctx, questionnaireID)
	if err != nil {
		return err
	}
	questions := q.QuestionByID()
	for key, value := range answers {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: answer key %q is not a question id", models.ErrInvalidAnswerFormat, key)
		}
		question, ok := questions[id]
		if !ok {
			return fmt.Errorf("%w: unknown question %d", models.ErrInvalidAnswerFormat, id)
		}
		if !question.Accepts(value) {
			return fmt.Errorf("%w: question %d (%s) does not accept a %s answer", models.ErrInvalidAnswerFormat, id, question.Type, value.Kind)
		}
	}
	return nil
}

// ListForUser returns the caller's own history, newest first.
func (s *AssessmentService) ListForUser(ctx context.Context, userID int) ([]models.AssessmentSummary, error) {
	return s.assessments.ListForUser(ctx, userID)
}
