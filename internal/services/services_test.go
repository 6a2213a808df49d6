package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"velum-go/internal/config"
	"velum-go/internal/database"
	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:svc_" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

// stubAssistant records prompts and replies with canned text.
type stubAssistant struct {
	mu         sync.Mutex
	configured bool
	reply      string
	chunks     []string
	err        error
	calls      [][]ChatMessage
}

func (a *stubAssistant) Configured(context.Context) bool { return a.configured }

func (a *stubAssistant) Complete(_ context.Context, messages []ChatMessage) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, messages)
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

func (a *stubAssistant) Stream(_ context.Context, messages []ChatMessage, onDelta func(string) error) (string, error) {
	a.mu.Lock()
	a.calls = append(a.calls, messages)
	chunks := a.chunks
	a.mu.Unlock()

	var full strings.Builder
	for _, c := range chunks {
		full.WriteString(c)
		if err := onDelta(c); err != nil {
			return full.String(), err
		}
	}
	return full.String(), a.err
}

func (a *stubAssistant) lastCall() []ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.calls) == 0 {
		return nil
	}
	return a.calls[len(a.calls)-1]
}

type testEnv struct {
	db             *gorm.DB
	ai             *stubAssistant
	logs           *LogService
	users          *UserService
	questionnaires *QuestionnaireService
	tasks          *TaskService
	assessments    *AssessmentService
	analysis       *AnalysisService
	chat           *ChatService
	games          *GameService
	dashboard      *DashboardService
	settings       *SettingsService
	strict         bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	env := &testEnv{db: db, ai: &stubAssistant{configured: true}}

	userRepo := repository.NewUserRepository(db)
	qRepo := repository.NewQuestionnaireRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	env.logs = NewLogService(repository.NewLogRepository(db), log)
	env.users = NewUserService(userRepo, env.logs, "", log)
	env.questionnaires = NewQuestionnaireService(qRepo, env.ai, env.logs, log)
	env.tasks = NewTaskService(taskRepo, userRepo, qRepo, env.logs, log)
	env.assessments = NewAssessmentService(db, assessmentRepo, taskRepo, qRepo, env.logs, func() bool { return env.strict }, log)
	env.analysis = NewAnalysisService(assessmentRepo, userRepo, qRepo, env.ai, env.logs, log)
	env.chat = NewChatService(repository.NewChatRepository(db), env.ai, log)
	env.games = NewGameService(repository.NewGameRepository(db), log)
	env.dashboard = NewDashboardService(userRepo, taskRepo, assessmentRepo, log)
	env.settings = NewSettingsService(repository.NewSettingRepository(db), env.logs, func() config.AIConfig {
		return config.AIConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", Timeout: time.Minute}
	}, log)
	return env
}

func (e *testEnv) createUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Role: role, PasswordHash: "x"}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) createQuestionnaire(t *testing.T, title string, questions ...models.Question) *models.Questionnaire {
	t.Helper()
	q := &models.Questionnaire{Title: title, Questions: datatypes.NewJSONType(questions), IsActive: true}
	if err := e.db.Create(q).Error; err != nil {
		t.Fatalf("create questionnaire: %v", err)
	}
	return q
}

func choice(id int, text string, options ...string) models.Question {
	q := models.Question{ID: id, Text: text, Type: models.SingleChoice}
	for i, o := range options {
		q.Options = append(q.Options, models.Option{Text: o, Score: i})
	}
	return q
}
