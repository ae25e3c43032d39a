package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/perception/internal/adapters/http/api"
	"github.com/okian/perception/internal/adapters/http/site"
	"github.com/okian/perception/internal/adapters/http/swagger"
	"github.com/okian/perception/internal/adapters/llm"
	"github.com/okian/perception/internal/adapters/session"
	"github.com/okian/perception/internal/domain/report"
	"github.com/okian/perception/pkg/logger"
	"github.com/okian/perception/pkg/metrics"
)

// HTTP server timeout constants.
const (
	idleTimeout          = 60 * time.Second
	readHeaderTimeout    = 5 * time.Second
	shutdownTimeout      = 30 * time.Second
	sessionSweepInterval = time.Minute
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	cfg, log := c.cfg, c.log

	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if cfg.SearchAPIKey == "" {
		log.Warn(ctx, "search api key is not set; every report request will fail")
	}
	if cfg.UsesDefaultCredentials() {
		log.Warn(ctx, "dashboard is using the default admin credentials; set PERCEPTION_AUTH_USERNAME and PERCEPTION_AUTH_PASSWORD")
	}

	sessions := session.NewStore(session.WithTTL(cfg.SessionTTL()))

	llm.WarmTokens()
	go metrics.RunSystemCollector(ctx)
	go sweepSessions(ctx, sessions)

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, sessions, svc,
		api.WithCredentials(cfg.AuthUsername, cfg.AuthPassword),
		api.WithLoginRate(cfg.LoginRatePerMinute, cfg.LoginBurst),
		api.WithDefaultStyle(report.StyleName(cfg.DefaultStyle)),
		api.WithLogger(log),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("provider", cfg.GeneratorProvider),
			logger.String("model", cfg.GeneratorModel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

func sweepSessions(ctx context.Context, s *session.Store) {
	t := time.NewTicker(sessionSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}
