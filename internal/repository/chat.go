package repository

import (
	"context"
	"time"

	"velum-go/internal/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// ListSessions returns the user's sessions, most recently updated first.
func (r *ChatRepository) ListSessions(ctx context.Context, userID int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC, id DESC").Find(&sessions).Error
	return sessions, err
}

func (r *ChatRepository) CreateSession(ctx context.Context, s *models.ChatSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ChatRepository) GetSession(ctx context.Context, id int) (*models.ChatSession, error) {
	var s models.ChatSession
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err, models.ErrChatSessionNotFound)
	}
	return &s, nil
}

// GetSessionWithMessages loads the session and its messages in order.
func (r *ChatRepository) GetSessionWithMessages(ctx context.Context, id int) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp ASC, id ASC") }).
		First(&s, id).Error
	if err != nil {
		return nil, notFound(err, models.ErrChatSessionNotFound)
	}
	return &s, nil
}

// DeleteSession removes the session together with its messages.
func (r *ChatRepository) DeleteSession(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSession{}, id).Error
	})
}

func (r *ChatRepository) UpdateSession(ctx context.Context, id int, title string, at time.Time) error {
	updates := map[string]interface{}{"updated_at": at}
	if title != "" {
		updates["title"] = title
	}
	return r.db.WithContext(ctx).Model(&models.ChatSession{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ChatRepository) AddMessage(ctx context.Context, m *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// History returns the session's messages in conversation order.
func (r *ChatRepository) History(ctx context.Context, sessionID int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("timestamp ASC, id ASC").Find(&msgs).Error
	return msgs, err
}
