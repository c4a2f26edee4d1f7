package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/auth"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/config"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/database"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/handlers"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/logging"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/middleware"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/notify"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/server"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/telemetry"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/votes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, "reddit-api")
	if err != nil {
		log.WithError(err).Fatal("set up tracing")
	}

	db, err := database.New(cfg.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	var revocations auth.Revocations = auth.NoRevocations{}
	if cfg.RedisURL != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("connect to redis")
		}
		defer rdb.Close()
		revocations = auth.NewRedisRevocations(rdb)
	} else {
		log.Warn("REDIS_URL not set; logout will not revoke tokens")
	}

	users := store.NewUsers(db.GetDB())

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Twilio.Enabled() {
		notifier = notify.NewTwilioNotifier(cfg.Twilio, users, log)
		log.Info("SMS notifications enabled")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	handler := handlers.NewHandler(handlers.Deps{
		DB:           db.GetDB(),
		Tokens:       tokens,
		Revocations:  revocations,
		Notifier:     notifier,
		Votes:        votes.NewService(db.GetDB(), log),
		Log:          log,
		CookieSecure: cfg.CookieSecure,
	})
	authMW := middleware.Auth(tokens, revocations, users, log)
	srv := server.NewServer(cfg, db, handler, authMW, log)

	done := make(chan struct{})
	go gracefulShutdown(ctx, srv, log, done)

	log.WithField("addr", srv.Addr).Info("🚀 Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("http server error")
		stop()
	}

	<-done

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.WithError(err).Warn("flush traces")
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Warn("close database")
	}
	log.Info("Graceful shutdown complete.")
}

// gracefulShutdown waits for ctx to be cancelled, then gives in-flight
// requests five seconds to finish.
func gracefulShutdown(ctx context.Context, srv *http.Server, log logrus.FieldLogger, done chan<- struct{}) {
	defer close(done)
	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}
