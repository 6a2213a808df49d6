package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
)

const parseSystemPrompt = `You are an expert in psychological assessment and data structuring.
Convert the provided raw text (a psychological scale or questionnaire) into strict, valid JSON.

The JSON must follow this schema exactly:
{
  "title": "string (the name of the scale)",
  "description": "string (a brief description or instructions)",
  "interpretationGuide": "string (how total scores should be interpreted, if stated)",
  "questions": [
    {
      "id": int (sequential, starting from 1),
      "text": "string",
      "type": "SingleChoice" | "MultipleChoice" | "Text" | "Scale",
      "options": [ { "text": "string", "score": int } ]
    }
  ]
}

Rules:
1. Take the title and description from the beginning of the text when present.
2. Identify every question and its options.
3. Extract explicit option scores such as "Not at all (0)". For Likert scales without explicit scores assign logical scores starting from 0 or 1.
4. Choose the type from context. Most scales are SingleChoice.
5. Return only the raw JSON object, without markdown fences or commentary.`

type QuestionnaireService struct {
	repo *repository.QuestionnaireRepository
	ai   Assistant
	logs *LogService
	log  *zap.Logger
}

func NewQuestionnaireService(repo *repository.QuestionnaireRepository, ai Assistant, logs *LogService, log *zap.Logger) *QuestionnaireService {
	return &QuestionnaireService{repo: repo, ai: ai, logs: logs, log: log}
}

func (s *QuestionnaireService) List(ctx context.Context) ([]models.Questionnaire, error) {
	return s.repo.List(ctx)
}

func (s *QuestionnaireService) Get(ctx context.Context, id int) (*models.Questionnaire, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *QuestionnaireService) Create(ctx context.Context, actor *Actor, tmpl models.QuestionnaireTemplate) (*models.Questionnaire, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	var q models.Questionnaire
	tmpl.ApplyTo(&q)
	if err := s.repo.Create(ctx, &q); err != nil {
		return nil, fmt.Errorf("failed to create questionnaire: %w", err)
	}
	s.logs.Info(ctx, actor, "CreateQuestionnaire", fmt.Sprintf("Questionnaire:%d", q.ID), "Questionnaire created: "+q.Title)
	return &q, nil
}

// Update replaces the template content. Existing assessments are unaffected.
func (s *QuestionnaireService) Update(ctx context.Context, actor *Actor, id int, tmpl models.QuestionnaireTemplate) (*models.Questionnaire, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl.ApplyTo(q)
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to update questionnaire: %w", err)
	}
	s.logs.Info(ctx, actor, "UpdateQuestionnaire", fmt.Sprintf("Questionnaire:%d", q.ID), "Questionnaire updated: "+q.Title)
	return q, nil
}

// Delete removes the template. Assessments and tasks keep their ids.
func (s *QuestionnaireService) Delete(ctx context.Context, actor *Actor, id int) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrQuestionnaireNotFound
	}
	s.logs.Info(ctx, actor, "DeleteQuestionnaire", fmt.Sprintf("Questionnaire:%d", id), "Questionnaire deleted")
	return nil
}

// Parse asks the AI to structure raw questionnaire text. The result is
// validated but not stored.
func (s *QuestionnaireService) Parse(ctx context.Context, text string) (*models.QuestionnaireTemplate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", models.ErrInvalidInput)
	}

	s.log.Info("Parsing questionnaire text with AI", zap.Int("length", len(text)))
	reply, err := s.ai.Complete(ctx, []ChatMessage{
		{Role: models.ChatRoleSystem, Content: parseSystemPrompt},
		{Role: models.ChatRoleUser, Content: text},
	})
	if err != nil {
		return nil, err
	}

	var tmpl models.QuestionnaireTemplate
	if err := json.Unmarshal([]byte(extractJSONObject(strings.TrimSpace(reply))), &tmpl); err != nil {
		s.log.Warn("AI returned unparsable questionnaire", zap.Int("length", len(reply)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrAIBadResponse, err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}
