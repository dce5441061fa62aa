// Package handler exposes reservations over HTTP.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	filmdomain "cinereserve/backend/internal/film/domain"
	"cinereserve/backend/internal/reservation/domain"
	"cinereserve/backend/internal/reservation/service"
	"cinereserve/backend/internal/server/middleware"
)

// Handler serves the authenticated reservation routes.
type Handler struct {
	svc *service.Service
	log *zap.Logger
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *service.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type createRequest struct {
	FilmID int64 `json:"film_id" binding:"required"`
	Seats  int   `json:"seats" binding:"required"`
}

type reservationResponse struct {
	ID        int64     `json:"id"`
	FilmID    int64     `json:"film_id"`
	FilmTitle string    `json:"film_title"`
	Seats     int       `json:"seats"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:        r.ID,
		FilmID:    r.FilmID,
		FilmTitle: r.FilmTitle,
		Seats:     r.Seats,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

// Create books seats for the authenticated caller.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "film_id and seats are required"})
		return
	}
	id := middleware.Identity(c)

	res, err := h.svc.Create(c.Request.Context(), id.SubjectID, req.FilmID, req.Seats)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, toResponse(res))
	case errors.Is(err, service.ErrFilmNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "film not found"})
	case errors.Is(err, filmdomain.ErrInsufficientSeats):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient seats available"})
	case errors.Is(err, service.ErrInvalidReservation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("create reservation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// List returns the authenticated caller's reservations.
func (h *Handler) List(c *gin.Context) {
	id := middleware.Identity(c)

	out, err := h.svc.ListByUser(c.Request.Context(), id.SubjectID)
	if err != nil {
		h.log.Error("list reservations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	resp := make([]reservationResponse, 0, len(out))
	for _, r := range out {
		resp = append(resp, toResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}
