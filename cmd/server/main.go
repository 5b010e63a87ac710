package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/config"
	"github.com/hongminglow/campus-connect/internal/logging"
	"github.com/hongminglow/campus-connect/internal/metrics"
	"github.com/hongminglow/campus-connect/internal/server"
	"github.com/hongminglow/campus-connect/internal/storage"
	"github.com/hongminglow/campus-connect/internal/storage/postgres"
	"github.com/hongminglow/campus-connect/internal/storage/sqlite"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.Development(), nil)
	if envErr != nil {
		log.Debug("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}
	defer store.Close()

	var deny auth.DenyList
	if cfg.RedisURL != "" {
		redisDeny, err := auth.NewRedisDenyList(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("init token deny-list")
		}
		defer redisDeny.Close()
		deny = redisDeny
		log.Info("token revocation enabled")
	}

	srv := server.New(cfg, server.Deps{
		Store:    store,
		DenyList: deny,
		Metrics:  metrics.New(),
		Log:      log,
	})

	go func() {
		log.WithFields(logrus.Fields{
			"addr":     cfg.HTTPAddress(),
			"postgres": cfg.UsesPostgres(),
			"static":   cfg.StaticDir,
		}).Info("Campus Connect API listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("graceful shutdown error")
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.UsesPostgres() {
		pg, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := sqlite.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return lite, nil
}
