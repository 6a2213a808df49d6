package models

import (
	"time"

	"gorm.io/datatypes"
)

// GameScore is one finished round of a cognitive mini-game.
type GameScore struct {
	ID       int            `gorm:"primaryKey" json:"id"`
	UserID   int            `gorm:"index;not null" json:"userId"`
	GameName string         `gorm:"size:64;index;not null" json:"gameName"`
	Score    int            `json:"score"`
	Duration float64        `json:"duration"` // seconds
	Measures datatypes.JSON `json:"measures,omitempty"`
	PlayedAt time.Time      `gorm:"not null" json:"playedAt"`
}

// GameScoreView adds the player's name for leaderboards.
type GameScoreView struct {
	GameScore
	Username string `json:"username"`
}
