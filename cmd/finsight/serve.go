package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/api"
	"github.com/newthinker/finsight/internal/api/job"
	"github.com/newthinker/finsight/internal/app"
	"github.com/newthinker/finsight/internal/logger"
	"github.com/newthinker/finsight/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FinSight API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	opts := append([]app.Option{}, appOptions...)
	a, err := app.New(cfg, log, append(opts, app.WithMetrics(reg))...)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}

	log.Info("starting FinSight server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("auth", cfg.Server.APIKey != ""),
	)

	deps := api.Dependencies{
		Service:  a,
		Universe: a,
		Jobs:     job.NewStore(100, time.Hour),
		Stats:    a.GetStats,
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		deps.Metrics = reg
		metricsPath = cfg.Metrics.Path
	}

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		MetricsPath: metricsPath,
	}, deps, logger.Component(log, "api"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down FinSight server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
