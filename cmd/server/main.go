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
	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/config"
	"github.com/audire/casting-portal/internal/database"
	"github.com/audire/casting-portal/internal/queue"
	"github.com/audire/casting-portal/internal/router"
	"github.com/audire/casting-portal/internal/service"
	"github.com/audire/casting-portal/internal/storage"
	"github.com/audire/casting-portal/pkg/logger"
)

func main() {
	// a missing .env is fine: the environment may already be set
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "audire",
	})

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrate schema")
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	photos, err := storage.NewPhotoStore(cfg.Upload.PhotoDir)
	if err != nil {
		log.Fatal().Err(err).Msg("photo storage")
	}

	var events service.Events = service.NopEvents{}
	if cfg.AMQP.Enabled {
		events = &service.AMQPEvents{URL: cfg.AMQP.URL, Log: log}

		consumer, closer, err := queue.NewAuditConsumer(cfg.AMQP.URL, cfg.AMQP.AuditLog, log)
		if err != nil {
			log.Fatal().Err(err).Msg("audit consumer")
		}
		defer closer.Close()
		go func() { _ = consumer.Run(ctx) }()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Setup(e, router.Deps{
		Cfg:    cfg,
		Log:    log,
		DB:     db,
		Redis:  rdb,
		Photos: photos,
		Events: events,
		Now:    time.Now,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
