package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/barangay_portal/internal/account"
	"github.com/Skotchmaster/barangay_portal/internal/config"
	"github.com/Skotchmaster/barangay_portal/internal/db"
	"github.com/Skotchmaster/barangay_portal/internal/events"
	"github.com/Skotchmaster/barangay_portal/internal/handlers"
	"github.com/Skotchmaster/barangay_portal/internal/logging"
	"github.com/Skotchmaster/barangay_portal/internal/middleware/csrf"
	guardmw "github.com/Skotchmaster/barangay_portal/internal/middleware/guard"
	httpserver "github.com/Skotchmaster/barangay_portal/internal/transport/http"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.NewWithOptions(os.Stdout, logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, db.Options{DatabaseURL: cfg.DatabaseURL, SQLitePath: cfg.SQLitePath})
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := account.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS is empty, session events are not published")
	}

	svc := &account.Service{
		Repo:     &account.GormRepo{DB: gdb},
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
	}

	e := echo.New()
	e.HideBanner = true

	httpserver.Register(e, &httpserver.Deps{
		DB:     gdb,
		Logger: logger,
		AuthHandler: &handlers.AuthHandler{
			Svc:       svc,
			Publisher: publisher,
			Secure:    cfg.CookieSecure,
		},
		Guard: guardmw.Config{
			Secure:    cfg.CookieSecure,
			Publisher: publisher,
		},
		CSRF: csrf.Config{
			Secure:            cfg.CookieSecure,
			EnforceSameOrigin: true,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("portal listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
