package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, _, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Server.Port != "5050" {
		t.Errorf("Server.Port = %q, want 5050", c.Server.Port)
	}
	if c.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", c.Database.Driver)
	}
	if c.Scheduler.AnalysisInterval != 10*time.Second {
		t.Errorf("Scheduler.AnalysisInterval = %v, want 10s", c.Scheduler.AnalysisInterval)
	}
	if c.Scheduler.AnalysisBatchSize != 5 {
		t.Errorf("Scheduler.AnalysisBatchSize = %d, want 5", c.Scheduler.AnalysisBatchSize)
	}
	if c.Scoring.StrictAnswers {
		t.Error("Scoring.StrictAnswers should default to false")
	}
	if Current() != c {
		t.Error("Current() should return the loaded configuration")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "server:\n  port: \"6060\"\ndatabase:\n  driver: postgres\nscoring:\n  strict_answers: true\n"
	if err := os.WriteFile(filepath.Join(root, "config", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VELUM_AI_MODEL", "test-model")

	c, _, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Server.Port != "6060" {
		t.Errorf("Server.Port = %q, want 6060", c.Server.Port)
	}
	if c.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", c.Database.Driver)
	}
	if !c.Scoring.StrictAnswers {
		t.Error("Scoring.StrictAnswers should be true")
	}
	if c.AI.Model != "test-model" {
		t.Errorf("AI.Model = %q, want test-model", c.AI.Model)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("VELUM_SEED_ADMIN_USERNAME=root\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("VELUM_SEED_ADMIN_USERNAME") })

	c, _, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Seed.AdminUsername != "root" {
		t.Errorf("Seed.AdminUsername = %q, want root", c.Seed.AdminUsername)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "velum"}
	want := "host=db user=u password=p dbname=velum port=5432 sslmode=disable TimeZone=UTC"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
