package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"resumeqa/internal/logger"
	"resumeqa/internal/metrics"
	"resumeqa/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Index the resume and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log := logger.GetDefault()
			log.Info("Initializing application", "document", cfg.Document.Path)
			m := metrics.New()
			svc, client, err := buildService(cfg, m, true)
			if err != nil {
				return err
			}
			log.Info("Resume overview", "summary", svc.Summary())

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr: cfg.Server.Addr,
				Handler: server.NewRouter(svc, server.Options{
					Model:   client.Model(),
					Logger:  log.With("component", "http"),
					Metrics: m.Handler(),
				}),
				ReadHeaderTimeout: cfg.Server.ReadTimeout(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("Application started", "addr", cfg.Server.Addr, "routes", "POST /query, POST /search, GET /health, GET /metrics")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
				defer cancel()
				log.Info("Shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}
