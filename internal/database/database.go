package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"velum-go/internal/config"
	logging "velum-go/internal/logging"
	"velum-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Init opens the configured database and migrates the schema.
func Init(conf config.DatabaseConfig, projectRoot string, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(conf, projectRoot)
	if err != nil {
		return nil, err
	}

	// Create our custom GORM logger
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logging.ParseGormLevel(conf.LogLevel)
	if conf.SlowThreshold > 0 {
		gormLogger.SlowThreshold = conf.SlowThreshold
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully.", zap.String("driver", conf.Driver))

	if conf.Driver == "sqlite" {
		// SQLite allows a single writer; serialising connections avoids
		// "database is locked" under concurrent requests.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrations completed successfully.")
	return db, nil
}

func dialectorFor(conf config.DatabaseConfig, projectRoot string) (gorm.Dialector, error) {
	switch conf.Driver {
	case "postgres":
		return postgres.Open(conf.DSN()), nil
	case "sqlite", "":
		path := conf.Path
		if path == ":memory:" || strings.HasPrefix(path, "file:") {
			return sqlite.Open(path), nil
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectRoot, path)
		}
		return sqlite.Open(path + "?_busy_timeout=5000"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}

// Migrate creates or updates every table. Assessments carry no foreign keys
// so records survive deletion of their user, questionnaire or task.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Questionnaire{},
		&models.Task{},
		&models.Assessment{},
		&models.SystemLog{},
		&models.AppSetting{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.GameScore{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// Seed creates the built-in admin account on an empty user table and loads
// the questionnaire library on an empty questionnaire table.
func Seed(ctx context.Context, db *gorm.DB, conf config.SeedConfig, projectRoot string, log *zap.Logger) error {
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users == 0 {
		admin := &models.User{
			Username: conf.AdminUsername,
			Email:    "admin@velum.com",
			FullName: "System Administrator",
			Role:     models.RoleAdmin,
		}
		if err := admin.SetPassword(conf.AdminPassword); err != nil {
			return err
		}
		if err := db.WithContext(ctx).Create(admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		log.Info("Seeded admin account", zap.String("username", admin.Username))
	}

	var questionnaires int64
	if err := db.WithContext(ctx).Model(&models.Questionnaire{}).Count(&questionnaires).Error; err != nil {
		return err
	}
	if questionnaires > 0 || conf.QuestionnairesFile == "" {
		return nil
	}

	path := conf.QuestionnairesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectRoot, path)
	}
	lib, err := models.LoadQuestionnaireLibrary(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Questionnaire seed file not found, skipping", zap.String("path", path))
			return nil
		}
		return err
	}
	for i := range lib.Questionnaires {
		var q models.Questionnaire
		lib.Questionnaires[i].ApplyTo(&q)
		if err := db.WithContext(ctx).Create(&q).Error; err != nil {
			return fmt.Errorf("failed to seed questionnaire %q: %w", q.Title, err)
		}
	}
	log.Info("Seeded questionnaires", zap.Int("count", len(lib.Questionnaires)))
	return nil
}
