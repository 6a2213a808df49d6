package models

import "time"

// Chat message roles, matching the chat-completions wire names.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

const DefaultChatTitle = "New Chat"

type ChatSession struct {
	ID        int           `gorm:"primaryKey" json:"id"`
	UserID    int           `gorm:"index;not null" json:"userId"`
	Title     string        `gorm:"size:128;not null" json:"title"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Messages  []ChatMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

type ChatMessage struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	SessionID *int      `gorm:"index" json:"sessionId"`
	UserID    int       `gorm:"index;not null" json:"userId"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"not null" json:"content"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}
