// Package handlers provides the JSON API endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"velum-go/internal/auth"
	"velum-go/internal/models"
	"velum-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps a service error onto a status code and error body.
// Unexpected errors are logged and reported without detail.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	message := "An unexpected error occurred"

	switch {
	case models.IsNotFoundError(err):
		status, code, message = http.StatusNotFound, "not_found", err.Error()
	case models.IsValidationError(err):
		status, code, message = http.StatusBadRequest, "invalid_input", err.Error()
	case models.IsAuthError(err):
		status, code, message = http.StatusUnauthorized, "unauthorized", err.Error()
	case models.IsForbiddenError(err):
		status, code, message = http.StatusForbidden, "forbidden", err.Error()
	case models.IsConflictError(err):
		status, code, message = http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, models.ErrAIUnavailable):
		status, code, message = http.StatusServiceUnavailable, "ai_unavailable", err.Error()
	case models.IsAIError(err):
		status, code, message = http.StatusBadGateway, "ai_error", err.Error()
	default:
		log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_input", Message: message})
}

// bindJSON decodes and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// paramID parses a positive integer path parameter, answering 400 on failure.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// currentUser returns the caller's id. Routes using it sit behind the auth
// middleware, so a miss is answered with 401.
func currentUser(c *gin.Context) (int, *auth.Claims, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if ok {
		if id, err := claims.UserID(); err == nil {
			return id, claims, true
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Authentication required"})
	return 0, nil, false
}

// actor describes the caller for the audit log.
func actor(c *gin.Context) *services.Actor {
	a := &services.Actor{IP: c.ClientIP()}
	if claims, ok := auth.ClaimsFrom(c); ok {
		a.Username = claims.Username
		a.UserID, _ = claims.UserID()
	}
	return a
}
