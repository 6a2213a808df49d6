package models

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "SingleChoice"
	MultipleChoice QuestionType = "MultipleChoice"
	Text           QuestionType = "Text"
	Scale          QuestionType = "Scale"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, Text, Scale:
		return true
	}
	return false
}

// Option is one selectable answer of a choice question.
type Option struct {
	Text  string `json:"text" yaml:"text" validate:"required"`
	Score int    `json:"score" yaml:"score"`
}

// Question is a single item of a questionnaire.
type Question struct {
	ID      int          `json:"id" yaml:"id"`
	Text    string       `json:"text" yaml:"text" validate:"required"`
	Type    QuestionType `json:"type" yaml:"type"`
	Options []Option     `json:"options" yaml:"options" validate:"dive"`
}

// Questionnaire is a stored template. Questions live in a JSON column so the
// template keeps its authored order.
type Questionnaire struct {
	ID                  int                            `gorm:"primaryKey" json:"id"`
	Title               string                         `gorm:"size:200;not null" json:"title"`
	Description         string                         `json:"description"`
	InterpretationGuide string                         `json:"interpretationGuide,omitempty"`
	Questions           datatypes.JSONType[[]Question] `json:"questions"`
	IsActive            bool                           `json:"isActive"`
	CreatedAt           time.Time                      `json:"createdAt"`
	UpdatedAt           time.Time                      `json:"updatedAt"`
}

// QuestionList returns the questions in template order.
func (q *Questionnaire) QuestionList() []Question {
	return q.Questions.Data()
}

// QuestionByID indexes questions by their id.
func (q *Questionnaire) QuestionByID() map[int]Question {
	list := q.QuestionList()
	out := make(map[int]Question, len(list))
	for _, question := range list {
		out[question.ID] = question
	}
	return out
}

// QuestionnaireTemplate is the authoring shape of a questionnaire: what admins
// post, what the AI parser returns and what the seed file contains.
type QuestionnaireTemplate struct {
	Title               string     `json:"title" yaml:"title" validate:"required,max=200"`
	Description         string     `json:"description" yaml:"description"`
	InterpretationGuide string     `json:"interpretationGuide" yaml:"interpretation_guide"`
	Questions           []Question `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
	IsActive            *bool      `json:"isActive,omitempty" yaml:"is_active,omitempty"`
}

var validate = validator.New()

// Validate checks the template shape and the question rules: supported
// types, unique ids and options for choice questions.
func (t *QuestionnaireTemplate) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateInvalidFormat, err)
	}

	seen := make(map[int]struct{}, len(t.Questions))
	for _, q := range t.Questions {
		if !q.Type.Valid() {
			return fmt.Errorf("%w: %q on question %d", ErrInvalidQuestionType, q.Type, q.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateQuestionID, q.ID)
		}
		seen[q.ID] = struct{}{}
		if (q.Type == SingleChoice || q.Type == MultipleChoice) && len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d", ErrMissingQuestionOptions, q.ID)
		}
	}
	return nil
}

// ApplyTo copies the template onto a stored questionnaire.
func (t *QuestionnaireTemplate) ApplyTo(q *Questionnaire) {
	q.Title = t.Title
	q.Description = t.Description
	q.InterpretationGuide = t.InterpretationGuide
	q.Questions = datatypes.NewJSONType(t.Questions)
	if t.IsActive != nil {
		q.IsActive = *t.IsActive
	} else if q.ID == 0 {
		q.IsActive = true
	}
}

// QuestionnaireLibrary is the seed file layout.
type QuestionnaireLibrary struct {
	Questionnaires []QuestionnaireTemplate `yaml:"questionnaires"`
}

// LoadQuestionnaireLibrary reads and validates the seed questionnaires file.
func LoadQuestionnaireLibrary(path string) (*QuestionnaireLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire file: %w", err)
	}

	var lib QuestionnaireLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire YAML: %w", err)
	}

	for i := range lib.Questionnaires {
		if err := lib.Questionnaires[i].Validate(); err != nil {
			return nil, fmt.Errorf("questionnaire %q: %w", lib.Questionnaires[i].Title, err)
		}
	}
	return &lib, nil
}
