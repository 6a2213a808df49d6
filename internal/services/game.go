package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"velum-go/internal/metrics"
	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const DefaultLeaderboardSize = 10

type GameService struct {
	repo *repository.GameRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewGameService(repo *repository.GameRepository, log *zap.Logger) *GameService {
	return &GameService{repo: repo, log: log, now: time.Now}
}

func (s *GameService) SubmitScore(ctx context.Context, userID int, gameName string, score int, duration float64) (*models.GameScore, error) {
	gameName = strings.TrimSpace(gameName)
	if gameName == "" {
		return nil, fmt.Errorf("%w: game name is required", models.ErrInvalidInput)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: duration cannot be negative", models.ErrInvalidInput)
	}

	gs := &models.GameScore{
		UserID:   userID,
		GameName: gameName,
		Score:    score,
		Duration: duration,
		PlayedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, gs); err != nil {
		return nil, fmt.Errorf("failed to save game score: %w", err)
	}
	s.log.Debug("Game score saved", zap.Int("userID", userID), zap.String("game", gameName), zap.Int("score", score))
	return gs, nil
}

// SubmitTrial scores a round from its raw event log and stores the result.
// Only games known to the metrics package are accepted.
func (s *GameService) SubmitTrial(ctx context.Context, userID int, gameName string, raw json.RawMessage) (*models.GameScore, error) {
	gameName = strings.TrimSpace(gameName)
	result, err := metrics.Evaluate(gameName, raw)
	if err != nil {
		return nil, err
	}

	measures, err := json.Marshal(result.Measures)
	if err != nil {
		return nil, err
	}
	gs := &models.GameScore{
		UserID:   userID,
		GameName: gameName,
		Score:    result.Score,
		Duration: result.Duration,
		Measures: datatypes.JSON(measures),
		PlayedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, gs); err != nil {
		return nil, fmt.Errorf("failed to save game score: %w", err)
	}
	s.log.Debug("Game trial scored", zap.Int("userID", userID), zap.String("game", gameName), zap.Int("score", gs.Score))
	return gs, nil
}

func (s *GameService) MyScores(ctx context.Context, userID int) ([]models.GameScore, error) {
	return s.repo.ForUser(ctx, userID)
}

// Leaderboard returns the top rounds of a game. Non-positive sizes use the
// default of 10.
func (s *GameService) Leaderboard(ctx context.Context, gameName string, size int) ([]models.GameScoreView, error) {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return s.repo.Top(ctx, gameName, size)
}

func (s *GameService) All(ctx context.Context) ([]models.GameScoreView, error) {
	return s.repo.All(ctx)
}
