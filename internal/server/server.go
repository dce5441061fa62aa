// Package server assembles the HTTP router from the feature handlers.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinereserve/backend/internal/audit"
	"cinereserve/backend/internal/auth"
	authhandler "cinereserve/backend/internal/auth/handler"
	filmhandler "cinereserve/backend/internal/film/handler"
	filmrepo "cinereserve/backend/internal/film/repository"
	reshandler "cinereserve/backend/internal/reservation/handler"
	resservice "cinereserve/backend/internal/reservation/service"
	"cinereserve/backend/internal/server/middleware"
)

// Deps are the wired services the router needs.
type Deps struct {
	Auth         *auth.Service
	Films        filmrepo.Repository
	Reservations *resservice.Service
	Audit        *audit.Logger
	LoginLimiter *middleware.RateLimiter
	Log          *zap.Logger
	// Env selects gin's mode; "production" silences debug output.
	Env string
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(d Deps) *gin.Engine {
	if d.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.SecurityHeaders(), middleware.BodyLimit(), middleware.ClientIP())

	authH := authhandler.NewHandler(d.Auth, d.Log)
	filmH := filmhandler.NewHandler(d.Films, d.Log)
	resH := reshandler.NewHandler(d.Reservations, d.Log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/films", filmH.List)

	limited := r.Group("/", middleware.RateLimit(d.LoginLimiter, d.Audit))
	limited.POST("/signup", authH.Signup)
	limited.POST("/login", authH.Login)

	// Logout takes the raw bearer token and is deliberately not behind
	// RequireAuth: revoking an already-expired token must still work.
	r.POST("/logout", authH.Logout)

	protected := r.Group("/", middleware.RequireAuth(d.Auth))
	protected.GET("/me", authH.Me)
	protected.POST("/reservations", resH.Create)
	protected.GET("/reservations", resH.List)

	return r
}
