package handlers

import (
	"encoding/json"
	"net/http"

	"velum-go/internal/models"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GameHandler struct {
	games *services.GameService
	log   *zap.Logger
}

func NewGameHandler(games *services.GameService, log *zap.Logger) *GameHandler {
	return &GameHandler{games: games, log: log}
}

type ScoreRequest struct {
	GameName string  `json:"gameName" binding:"required"`
	Score    int     `json:"score"`
	Duration float64 `json:"duration"`
}

// TrialRequest carries a raw event log for server-side scoring.
type TrialRequest struct {
	GameName string          `json:"gameName" binding:"required"`
	Data     json.RawMessage `json:"data" binding:"required"`
}

func (h *GameHandler) SubmitScore(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req ScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	score, err := h.games.SubmitScore(c.Request.Context(), userID, req.GameName, req.Score, req.Duration)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, score)
}

// SubmitTrial scores a round of a supported cognitive test on the server.
func (h *GameHandler) SubmitTrial(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req TrialRequest
	if !bindJSON(c, &req) {
		return
	}
	score, err := h.games.SubmitTrial(c.Request.Context(), userID, req.GameName, req.Data)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, score)
}

func (h *GameHandler) MyScores(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	scores, err := h.games.MyScores(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if scores == nil {
		scores = []models.GameScore{}
	}
	c.JSON(http.StatusOK, scores)
}

// Leaderboard handles GET /games/leaderboard/:game?size=.
func (h *GameHandler) Leaderboard(c *gin.Context) {
	size, ok := queryInt(c, "size")
	if !ok {
		return
	}
	board, err := h.games.Leaderboard(c.Request.Context(), c.Param("game"), size)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, nonNilScores(board))
}

func (h *GameHandler) All(c *gin.Context) {
	scores, err := h.games.All(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, nonNilScores(scores))
}

func nonNilScores(scores []models.GameScoreView) []models.GameScoreView {
	if scores == nil {
		return []models.GameScoreView{}
	}
	return scores
}
