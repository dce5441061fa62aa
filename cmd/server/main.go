package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cinereserve/backend/internal/audit"
	"cinereserve/backend/internal/auth"
	"cinereserve/backend/internal/config"
	"cinereserve/backend/internal/db"
	filmrepo "cinereserve/backend/internal/film/repository"
	"cinereserve/backend/internal/logging"
	resrepo "cinereserve/backend/internal/reservation/repository"
	resservice "cinereserve/backend/internal/reservation/service"
	"cinereserve/backend/internal/security"
	"cinereserve/backend/internal/server"
	"cinereserve/backend/internal/server/middleware"
	"cinereserve/backend/internal/session"
	"cinereserve/backend/internal/storage/jsonfile"
	userrepo "cinereserve/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	users, films, reservations, cleanup, err := buildRepos(cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer cleanup()

	auditLog := audit.NewLogger(logger, clientIPFromContext)
	sessions := session.NewStore(nil)
	authSvc := auth.NewService(
		users,
		security.NewHasher(cfg.ScryptN, cfg.HashConcurrency),
		security.NewCodec([]byte(cfg.JWTSecret), nil),
		sessions,
		cfg.TokenTTL(),
		auditLog,
		logger,
		nil,
	)

	router := server.NewRouter(server.Deps{
		Auth:         authSvc,
		Films:        films,
		Reservations: resservice.NewService(films, reservations, nil),
		Audit:        auditLog,
		LoginLimiter: middleware.NewRateLimiter(cfg.RateLimitLoginMax, cfg.LoginWindow(), nil),
		Log:          logger,
		Env:          cfg.Env,
	})

	sweepDone := make(chan struct{})
	go sweepSessions(sessions, cfg.SweepInterval(), logger, sweepDone)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	close(sweepDone)

	logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}

// buildRepos selects Postgres when DATABASE_URL is set and JSON-file
// storage under DATA_DIR otherwise.
func buildRepos(cfg *config.Config, logger *zap.Logger) (userrepo.Repository, filmrepo.Repository, resrepo.Repository, func(), error) {
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		logger.Info("storage: postgres")
		return userrepo.NewPostgresRepository(sqlDB),
			filmrepo.NewPostgresRepository(sqlDB),
			resrepo.NewPostgresRepository(sqlDB),
			func() { _ = sqlDB.Close() }, nil
	}
	store, err := jsonfile.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger.Info("storage: json files", zap.String("dir", cfg.DataDir))
	return userrepo.NewJSONFileRepository(store),
		filmrepo.NewJSONFileRepository(store),
		resrepo.NewJSONFileRepository(store),
		func() {}, nil
}

func sweepSessions(sessions *session.Store, interval time.Duration, logger *zap.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if removed := sessions.Sweep(now); removed > 0 {
				logger.Info("session sweep", zap.Int("removed", removed))
			}
		}
	}
}

// clientIPFromContext reads the client IP that the auth handlers stash on
// the request context. Gin requests do not carry it by default, so this
// returns "" and audit records "unknown" unless middleware set it.
func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(audit.ClientIPKey).(string)
	return ip
}
