package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"velum-go/internal/config"
	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
)

// Setting keys that override the ai section of the configuration file.
const (
	SettingAIKey     = "ai.api_key"
	SettingAIBaseURL = "ai.base_url"
	SettingAIModel   = "ai.model"
	SettingAITimeout = "ai.timeout"
)

type SettingsService struct {
	repo *repository.SettingRepository
	logs *LogService
	base func() config.AIConfig
	log  *zap.Logger
}

// NewSettingsService builds the service. base returns the file/env AI
// configuration that stored settings are layered on.
func NewSettingsService(repo *repository.SettingRepository, logs *LogService, base func() config.AIConfig, log *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logs: logs, base: base, log: log}
}

func (s *SettingsService) List(ctx context.Context) ([]models.AppSetting, error) {
	return s.repo.List(ctx)
}

// Update upserts every setting. Keys are trimmed and must be non-empty.
func (s *SettingsService) Update(ctx context.Context, actor *Actor, settings []models.AppSetting) error {
	for i := range settings {
		settings[i].Key = strings.TrimSpace(settings[i].Key)
		if settings[i].Key == "" {
			return fmt.Errorf("%w: setting key is required", models.ErrInvalidInput)
		}
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return err
	}
	s.logs.Info(ctx, actor, "UpdateSettings", "Settings", "System settings updated")
	return nil
}

// Reset deletes every stored override.
func (s *SettingsService) Reset(ctx context.Context, actor *Actor) error {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return err
	}
	s.logs.Warning(ctx, actor, "ResetSettings", "Settings", fmt.Sprintf("System settings reset (%d removed)", n))
	return nil
}

// AIConfig returns the effective AI configuration: the configured values with
// any non-empty stored ai.* setting applied on top.
func (s *SettingsService) AIConfig(ctx context.Context) config.AIConfig {
	var cfg config.AIConfig
	if s.base != nil {
		cfg = s.base()
	}

	settings, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn("Failed to read AI setting overrides", zap.Error(err))
		return cfg
	}
	for _, st := range settings {
		value := strings.TrimSpace(st.Value)
		if value == "" {
			continue
		}
		switch st.Key {
		case SettingAIKey:
			cfg.APIKey = value
		case SettingAIBaseURL:
			cfg.BaseURL = value
		case SettingAIModel:
			cfg.Model = value
		case SettingAITimeout:
			if d, err := time.ParseDuration(value); err == nil {
				cfg.Timeout = d
			}
		}
	}
	return cfg
}
