// Command registrar serves the teacher and student listing and update API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Konsultn-Engineering/registrar/config"
	"github.com/Konsultn-Engineering/registrar/connector"
	"github.com/Konsultn-Engineering/registrar/handler"
	"github.com/Konsultn-Engineering/registrar/logging"
	"github.com/Konsultn-Engineering/registrar/metrics"
	"github.com/Konsultn-Engineering/registrar/repository"
)

const poolStatsInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging)

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("registrar stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("registrar stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := connector.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	repoOpts := []repository.Option{
		repository.WithPageLimit(cfg.Paging.MaxSize),
		repository.WithQueryTimeout(cfg.Database.QueryTimeout),
		repository.WithDialect(conn.Dialect()),
	}
	pool := conn.Pool()
	h := handler.New(
		repository.NewTeacherRepository(pool, repoOpts...),
		repository.NewStudentRepository(pool, repoOpts...),
		handler.HeaderGrants{},
		handler.WithHealth(conn.Health),
		handler.WithPaging(cfg.Paging),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.NewRouter(h, handler.RouterConfigFrom(cfg.Security)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go publishPoolStats(ctx, conn)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func publishPoolStats(ctx context.Context, conn *connector.PostgresConnector) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := conn.Stats()
			metrics.UpdatePoolStats(s.OpenConnections, s.InUse, s.Idle)
		}
	}
}
