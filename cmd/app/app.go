package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/credenciamento/event-api/internal/api"
	"github.com/credenciamento/event-api/internal/config"
	"github.com/credenciamento/event-api/internal/db"
	"github.com/credenciamento/event-api/internal/logger"
	"github.com/credenciamento/event-api/internal/metrics"
	"github.com/credenciamento/event-api/internal/realtime"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer logger.Sync()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := openBroker(ctx, conf)
	defer func() {
		if err := broker.Close(); err != nil {
			zap.L().Warn("failed to close broker", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s, err := api.NewServer(conf, postgresDB, broker, metrics.NewRegistry(reg))
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

// openBroker connects to Redis when an address is configured. A single
// instance works without it, so any failure falls back to the in-process
// broker.
func openBroker(ctx context.Context, conf *config.AppConfig) realtime.Broker {
	if conf.Redis == nil || conf.Redis.Addr == "" {
		return realtime.NewMemoryBroker()
	}

	broker, err := realtime.NewRedisBroker(ctx, conf.Redis, conf.Realtime.Channel)
	if err != nil {
		zap.L().Warn("redis unavailable, using in-memory broker", zap.String("addr", conf.Redis.Addr), zap.Error(err))
		return realtime.NewMemoryBroker()
	}

	return broker
}
