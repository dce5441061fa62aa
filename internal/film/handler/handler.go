// Package handler exposes the film catalog over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinereserve/backend/internal/film/domain"
	"cinereserve/backend/internal/film/repository"
)

// Handler serves the public catalog routes.
type Handler struct {
	films repository.Repository
	log   *zap.Logger
}

// NewHandler returns a Handler reading from films.
func NewHandler(films repository.Repository, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{films: films, log: log}
}

type filmResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Genre          string `json:"genre"`
	Showtime       string `json:"showtime"`
	AvailableSeats int    `json:"available_seats"`
}

func toResponse(f *domain.Film) filmResponse {
	return filmResponse{
		ID:             f.ID,
		Title:          f.Title,
		Genre:          f.Genre,
		Showtime:       f.Showtime,
		AvailableSeats: f.AvailableSeats,
	}
}

// List returns the full catalog.
func (h *Handler) List(c *gin.Context) {
	films, err := h.films.List(c.Request.Context())
	if err != nil {
		h.log.Error("list films failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]filmResponse, 0, len(films))
	for _, f := range films {
		out = append(out, toResponse(f))
	}
	c.JSON(http.StatusOK, out)
}
