package repository

import (
	"context"

	"velum-go/internal/models"

	"gorm.io/gorm"
)

type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, s *models.GameScore) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ForUser returns the user's rounds, latest first.
func (r *GameRepository) ForUser(ctx context.Context, userID int) ([]models.GameScore, error) {
	var scores []models.GameScore
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("played_at DESC, id DESC").Find(&scores).Error
	return scores, err
}

func (r *GameRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("game_scores AS g").
		Select("g.*, COALESCE(u.username, '') AS username").
		Joins("LEFT JOIN users u ON u.id = g.user_id")
}

// Top returns the best rounds of one game, highest score first.
func (r *GameRepository) Top(ctx context.Context, gameName string, limit int) ([]models.GameScoreView, error) {
	var scores []models.GameScoreView
	err := r.views(ctx).Where("g.game_name = ?", gameName).
		Order("g.score DESC, g.played_at ASC").
		Limit(limit).
		Scan(&scores).Error
	return scores, err
}

func (r *GameRepository) All(ctx context.Context) ([]models.GameScoreView, error) {
	var scores []models.GameScoreView
	return scores, r.views(ctx).Order("g.played_at DESC, g.id DESC").Scan(&scores).Error
}
