package models

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validTemplate() QuestionnaireTemplate {
	return QuestionnaireTemplate{
		Title: "Mood check",
		Questions: []Question{
			{ID: 1, Text: "How do you feel?", Type: SingleChoice, Options: []Option{{Text: "Good", Score: 0}, {Text: "Bad", Score: 3}}},
			{ID: 2, Text: "Anything else?", Type: Text},
		},
	}
}

func TestQuestionnaireTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*QuestionnaireTemplate)
		wantErr error
	}{
		{"valid", func(*QuestionnaireTemplate) {}, nil},
		{"missing title", func(q *QuestionnaireTemplate) { q.Title = "" }, ErrTemplateInvalidFormat},
		{"no questions", func(q *QuestionnaireTemplate) { q.Questions = nil }, ErrTemplateInvalidFormat},
		{"blank question text", func(q *QuestionnaireTemplate) { q.Questions[1].Text = "" }, ErrTemplateInvalidFormat},
		{"unknown type", func(q *QuestionnaireTemplate) { q.Questions[1].Type = "Slider" }, ErrInvalidQuestionType},
		{"duplicate id", func(q *QuestionnaireTemplate) { q.Questions[1].ID = 1 }, ErrDuplicateQuestionID},
		{"choice without options", func(q *QuestionnaireTemplate) { q.Questions[0].Options = nil }, ErrMissingQuestionOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(&tmpl)
			err := tmpl.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionnaireTemplate_ApplyTo(t *testing.T) {
	tmpl := validTemplate()
	var q Questionnaire
	tmpl.ApplyTo(&q)

	if !q.IsActive {
		t.Error("new questionnaires should default to active")
	}
	list := q.QuestionList()
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("QuestionList() = %+v", list)
	}
	if _, ok := q.QuestionByID()[2]; !ok {
		t.Error("QuestionByID() missing question 2")
	}

	inactive := false
	q.ID = 7
	tmpl.IsActive = &inactive
	tmpl.ApplyTo(&q)
	if q.IsActive {
		t.Error("explicit isActive=false should be applied")
	}
}

func TestLoadQuestionnaireLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questionnaires.yaml")
	content := `questionnaires:
  - title: Sleep
    description: Sleep quality
    interpretation_guide: Higher is worse.
    questions:
      - id: 1
        text: Hours slept
        type: Scale
      - id: 2
        text: Woke up at night
        type: SingleChoice
        options:
          - text: Never
            score: 0
          - text: Often
            score: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := LoadQuestionnaireLibrary(path)
	if err != nil {
		t.Fatalf("LoadQuestionnaireLibrary() error = %v", err)
	}
	if len(lib.Questionnaires) != 1 {
		t.Fatalf("got %d questionnaires, want 1", len(lib.Questionnaires))
	}
	q := lib.Questionnaires[0]
	if q.InterpretationGuide != "Higher is worse." || q.Questions[1].Options[1].Score != 2 {
		t.Errorf("unexpected template: %+v", q)
	}
}

func TestLoadQuestionnaireLibrary_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "questionnaires:\n  - title: Dup\n    questions:\n      - {id: 1, text: a, type: Text}\n      - {id: 1, text: b, type: Text}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadQuestionnaireLibrary(path); !errors.Is(err, ErrDuplicateQuestionID) {
		t.Errorf("error = %v, want ErrDuplicateQuestionID", err)
	}
}

func TestUser_Password(t *testing.T) {
	u := &User{Username: "alice", Role: RoleUser}
	if err := u.SetPassword("S3cret!pass"); err != nil {
		t.Fatal(err)
	}
	if !u.CheckPassword("S3cret!pass") {
		t.Error("CheckPassword() rejected the right password")
	}
	if u.CheckPassword("wrong") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if u.IsAdmin() || !ValidRole(RoleAdmin) || ValidRole("root") {
		t.Error("role helpers disagree")
	}
}

func TestShippedQuestionnaireLibrary(t *testing.T) {
	lib, err := LoadQuestionnaireLibrary(filepath.Join("..", "..", "config", "questionnaires.yaml"))
	if err != nil {
		t.Fatalf("shipped library does not load: %v", err)
	}
	titles := make(map[string]int)
	for _, q := range lib.Questionnaires {
		titles[q.Title] = len(q.Questions)
	}
	if titles["PHQ-9"] != 9 || titles["GAD-7"] != 7 {
		t.Errorf("question counts = %v", titles)
	}
}
