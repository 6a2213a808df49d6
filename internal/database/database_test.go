package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"velum-go/internal/config"
	"velum-go/internal/models"

	"go.uber.org/zap"
)

func openTestDB(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     "file:" + t.Name() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	}
}

func TestInit_SQLite(t *testing.T) {
	db, err := Init(openTestDB(t), t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	for _, table := range []string{"users", "questionnaires", "user_tasks", "assessments", "system_logs", "app_settings", "chat_sessions", "chat_messages", "game_scores"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s was not created", table)
		}
	}
}

func TestInit_UnsupportedDriver(t *testing.T) {
	if _, err := Init(config.DatabaseConfig{Driver: "oracle"}, t.TempDir(), zap.NewNop()); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSeed(t *testing.T) {
	root := t.TempDir()
	db, err := Init(openTestDB(t), root, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	yaml := "questionnaires:\n  - title: PHQ-2\n    questions:\n      - {id: 1, text: Little interest, type: Scale}\n      - {id: 2, text: Feeling down, type: Scale}\n"
	if err := os.WriteFile(filepath.Join(root, "q.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	conf := config.SeedConfig{AdminUsername: "admin", AdminPassword: "Admin@123", QuestionnairesFile: "q.yaml"}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Seed(ctx, db, conf, root, zap.NewNop()); err != nil {
			t.Fatalf("Seed() run %d error = %v", i, err)
		}
	}

	var admin models.User
	if err := db.First(&admin, "username = ?", "admin").Error; err != nil {
		t.Fatalf("admin not seeded: %v", err)
	}
	if !admin.IsAdmin() || !admin.CheckPassword("Admin@123") {
		t.Errorf("seeded admin = %+v", admin)
	}

	var qs []models.Questionnaire
	if err := db.Find(&qs).Error; err != nil {
		t.Fatal(err)
	}
	if len(qs) != 1 {
		t.Fatalf("seeded %d questionnaires, want 1 (seeding must be idempotent)", len(qs))
	}
	if got := qs[0].QuestionList(); len(got) != 2 || got[1].Text != "Feeling down" {
		t.Errorf("questions = %+v", got)
	}
}

func TestSeed_MissingFile(t *testing.T) {
	root := t.TempDir()
	db, err := Init(openTestDB(t), root, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	conf := config.SeedConfig{AdminUsername: "admin", AdminPassword: "Admin@123", QuestionnairesFile: "missing.yaml"}
	if err := Seed(context.Background(), db, conf, root, zap.NewNop()); err != nil {
		t.Fatalf("Seed() with missing file error = %v", err)
	}
}
