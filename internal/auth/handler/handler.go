// Package handler exposes the auth service over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinereserve/backend/internal/auth"
	"cinereserve/backend/internal/server/middleware"
)

// Handler serves the signup, login, logout, and me routes.
type Handler struct {
	svc *auth.Service
	log *zap.Logger
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *auth.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func grantResponse(g *auth.Grant) gin.H {
	return gin.H{
		"id":         g.SubjectID,
		"username":   g.Username,
		"name":       g.Name,
		"token":      g.Token,
		"expires_in": int64(g.ExpiresIn.Seconds()),
	}
}

// Signup registers a new account and returns its first session token.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	grant, err := h.svc.Signup(c.Request.Context(), req.Username, req.Password, req.Name)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, grantResponse(grant))
	case errors.Is(err, auth.ErrDuplicateSubject):
		c.JSON(http.StatusConflict, gin.H{"error": "username already registered"})
	case errors.Is(err, auth.ErrInvalidSignupInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Login verifies credentials and returns a fresh session token. Absent
// accounts and wrong passwords get the same response.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	grant, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, grantResponse(grant))
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		h.log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Logout revokes the presented token's session. It does not require the
// token to still verify: revoking an expired or unknown token is a no-op,
// and the response is 200 either way.
func (h *Handler) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context(), middleware.BearerToken(c))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated caller's identity. Requires RequireAuth.
func (h *Handler) Me(c *gin.Context) {
	id := middleware.Identity(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       id.SubjectID,
		"username": id.Username,
		"name":     id.Name,
	})
}
