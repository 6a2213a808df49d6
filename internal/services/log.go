package services

import (
	"context"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
)

// Actor identifies who triggered an audited action.
type Actor struct {
	UserID   int
	Username string
	IP       string
}

// LogEntry is the input for one system log record.
type LogEntry struct {
	Level    string
	Message  string
	Action   string
	Resource string
	Actor    *Actor
}

// LogService writes the administrator-facing audit trail. Failures to write
// an entry are reported to zap and never returned to the caller.
type LogService struct {
	repo *repository.LogRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewLogService(repo *repository.LogRepository, log *zap.Logger) *LogService {
	return &LogService{repo: repo, log: log, now: time.Now}
}

func (s *LogService) Log(ctx context.Context, e LogEntry) {
	entry := &models.SystemLog{
		Level:     e.Level,
		Message:   e.Message,
		Action:    e.Action,
		Resource:  e.Resource,
		Timestamp: s.now().UTC(),
	}
	if entry.Level == "" {
		entry.Level = models.LogInfo
	}
	if e.Actor != nil {
		if e.Actor.UserID != 0 {
			id := e.Actor.UserID
			entry.UserID = &id
		}
		entry.UserName = e.Actor.Username
		entry.IPAddress = e.Actor.IP
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error("Failed to write system log",
			zap.String("action", e.Action),
			zap.String("message", e.Message),
			zap.Error(err),
		)
	}
}

func (s *LogService) Info(ctx context.Context, actor *Actor, action, resource, message string) {
	s.Log(ctx, LogEntry{Level: models.LogInfo, Message: message, Action: action, Resource: resource, Actor: actor})
}

func (s *LogService) Warning(ctx context.Context, actor *Actor, action, resource, message string) {
	s.Log(ctx, LogEntry{Level: models.LogWarning, Message: message, Action: action, Resource: resource, Actor: actor})
}

func (s *LogService) Error(ctx context.Context, actor *Actor, action, resource, message string) {
	s.Log(ctx, LogEntry{Level: models.LogError, Message: message, Action: action, Resource: resource, Actor: actor})
}

// List returns log entries newest first. Count defaults to 100.
func (s *LogService) List(ctx context.Context, f repository.LogFilter) ([]models.SystemLog, error) {
	if f.Count <= 0 {
		f.Count = 100
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return s.repo.List(ctx, f)
}

func (s *LogService) Delete(ctx context.Context, id int) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrLogNotFound
	}
	return nil
}

func (s *LogService) DeleteMany(ctx context.Context, ids []int) (int64, error) {
	return s.repo.DeleteMany(ctx, ids)
}
