package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
)

const chatSystemPrompt = "You are Velum, a warm and supportive mental wellbeing assistant. Listen carefully, answer concisely and suggest professional help when a user may be at risk."

// chatHistoryLimit bounds how many earlier turns are sent to the AI.
const chatHistoryLimit = 20

const chatTitleRunes = 30

type ChatService struct {
	repo *repository.ChatRepository
	ai   Assistant
	log  *zap.Logger
	now  func() time.Time
}

func NewChatService(repo *repository.ChatRepository, ai Assistant, log *zap.Logger) *ChatService {
	return &ChatService{repo: repo, ai: ai, log: log, now: time.Now}
}

func (s *ChatService) ListSessions(ctx context.Context, userID int) ([]models.ChatSession, error) {
	return s.repo.ListSessions(ctx, userID)
}

func (s *ChatService) CreateSession(ctx context.Context, userID int, title string) (*models.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultChatTitle
	}
	now := s.now().UTC()
	session := &models.ChatSession{UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

// GetSession returns the session with its messages. Sessions of other users
// are forbidden.
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID int) (*models.ChatSession, error) {
	session, err := s.repo.GetSessionWithMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, models.ErrForbidden
	}
	return session, nil
}

func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID int) error {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return models.ErrForbidden
	}
	return s.repo.DeleteSession(ctx, sessionID)
}

// SendMessage stores the user's message, asks the AI with the session history
// and stores the reply. A nil sessionID starts a new session.
func (s *ChatService) SendMessage(ctx context.Context, userID int, sessionID *int, text string) (*models.ChatMessage, error) {
	session, prompt, err := s.prepare(ctx, userID, sessionID, text)
	if err != nil {
		return nil, err
	}
	reply, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn("Chat completion failed", zap.Int("sessionID", session.ID), zap.Error(err))
		return nil, err
	}
	return s.saveReply(ctx, userID, session.ID, reply)
}

// StreamMessage works like SendMessage but hands every reply fragment to
// onDelta as it arrives. A reply cut short by an error is still stored.
func (s *ChatService) StreamMessage(ctx context.Context, userID int, sessionID *int, text string, onDelta func(string) error) (*models.ChatMessage, error) {
	session, prompt, err := s.prepare(ctx, userID, sessionID, text)
	if err != nil {
		return nil, err
	}
	reply, streamErr := s.ai.Stream(ctx, prompt, onDelta)
	if streamErr != nil {
		s.log.Warn("Chat stream interrupted", zap.Int("sessionID", session.ID), zap.Error(streamErr))
		if reply == "" {
			return nil, streamErr
		}
	}

	// The client may already be gone; keep what was generated.
	msg, err := s.saveReply(context.WithoutCancel(ctx), userID, session.ID, reply)
	if err != nil {
		return nil, err
	}
	return msg, streamErr
}

func (s *ChatService) prepare(ctx context.Context, userID int, sessionID *int, text string) (*models.ChatSession, []ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, fmt.Errorf("%w: message is required", models.ErrInvalidInput)
	}

	var session *models.ChatSession
	var err error
	if sessionID == nil {
		session, err = s.CreateSession(ctx, userID, "")
	} else {
		session, err = s.repo.GetSession(ctx, *sessionID)
		if err == nil && session.UserID != userID {
			err = models.ErrForbidden
		}
	}
	if err != nil {
		return nil, nil, err
	}

	history, err := s.repo.History(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	id := session.ID
	if err := s.repo.AddMessage(ctx, &models.ChatMessage{
		SessionID: &id,
		UserID:    userID,
		Role:      models.ChatRoleUser,
		Content:   text,
		Timestamp: now,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to store chat message: %w", err)
	}

	title := ""
	if len(history) == 0 && session.Title == models.DefaultChatTitle {
		title = sessionTitle(text)
		session.Title = title
	}
	if err := s.repo.UpdateSession(ctx, session.ID, title, now); err != nil {
		return nil, nil, err
	}

	if len(history) > chatHistoryLimit {
		history = history[len(history)-chatHistoryLimit:]
	}
	prompt := make([]ChatMessage, 0, len(history)+2)
	prompt = append(prompt, ChatMessage{Role: models.ChatRoleSystem, Content: chatSystemPrompt})
	for _, m := range history {
		prompt = append(prompt, ChatMessage{Role: m.Role, Content: m.Content})
	}
	prompt = append(prompt, ChatMessage{Role: models.ChatRoleUser, Content: text})
	return session, prompt, nil
}

func (s *ChatService) saveReply(ctx context.Context, userID, sessionID int, reply string) (*models.ChatMessage, error) {
	now := s.now().UTC()
	msg := &models.ChatMessage{
		SessionID: &sessionID,
		UserID:    userID,
		Role:      models.ChatRoleAssistant,
		Content:   reply,
		Timestamp: now,
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store chat reply: %w", err)
	}
	if err := s.repo.UpdateSession(ctx, sessionID, "", now); err != nil {
		s.log.Warn("Failed to touch chat session", zap.Int("sessionID", sessionID), zap.Error(err))
	}
	return msg, nil
}

// sessionTitle is the first message cut to 30 characters.
func sessionTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= chatTitleRunes {
		return text
	}
	return string(runes[:chatTitleRunes]) + "..."
}
