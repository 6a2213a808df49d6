package handlers

import (
	"net/http"

	"velum-go/internal/models"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chat *services.ChatService
	log  *zap.Logger
}

func NewChatHandler(chat *services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

// ChatRequest sends a message. A missing sessionId starts a new session.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID *int   `json:"sessionId"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	sessions, err := h.chat.ListSessions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateSessionRequest
	// The body is optional.
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	session, err := h.chat.CreateSession(c.Request.Context(), userID, req.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession returns a session with its messages.
func (h *ChatHandler) GetSession(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	session, err := h.chat.GetSession(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.chat.DeleteSession(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.chat.SendMessage(c.Request.Context(), userID, req.SessionID, req.Message)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Stream answers with server-sent events: one "delta" event per chunk, then
// "done" carrying the stored message, or "error" if the reply broke off.
// Errors raised before the first chunk are plain JSON responses.
func (h *ChatHandler) Stream(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var req ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
	}

	msg, err := h.chat.StreamMessage(c.Request.Context(), userID, req.SessionID, req.Message, func(delta string) error {
		start()
		c.SSEvent("delta", gin.H{"content": delta})
		c.Writer.Flush()
		return c.Request.Context().Err()
	})
	if err != nil && !started {
		respondError(c, h.log, err)
		return
	}

	start()
	if err != nil {
		c.SSEvent("error", ErrorResponse{Error: "ai_error", Message: err.Error()})
	}
	if msg != nil {
		c.SSEvent("done", msg)
	}
	c.Writer.Flush()
}
