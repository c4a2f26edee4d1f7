// Command reconcile recomputes the stored karma of every post and comment
// from the vote ledger. Run it after restoring a backup or editing votes by hand.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/config"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/database"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/logging"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/telemetry"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/votes"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the run after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, "reddit-reconcile")
	if err != nil {
		log.WithError(err).Fatal("set up tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	db, err := database.New(cfg.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	start := time.Now()
	n, err := votes.NewAggregator(db.GetDB(), log).RecomputeAll(ctx)
	if err != nil {
		log.WithError(err).WithField("targets", n).Error("reconcile failed")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"targets":  n,
		"duration": time.Since(start).String(),
	}).Info("reconcile complete")
}
