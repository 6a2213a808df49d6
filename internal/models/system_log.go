package models

import "time"

// Log levels stored with each system log entry.
const (
	LogInfo    = "Info"
	LogWarning = "Warning"
	LogError   = "Error"
)

// SystemLog is an audit entry surfaced to administrators.
type SystemLog struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:16;index;not null" json:"level"`
	Message   string    `gorm:"not null" json:"message"`
	UserID    *int      `json:"userId,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Action    string    `gorm:"size:64" json:"action,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	IPAddress string    `gorm:"size:64" json:"ipAddress,omitempty"`
}
