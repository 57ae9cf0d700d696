package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/assets"
	"github.com/hyperjump/serupa/internal/search"
	"github.com/hyperjump/serupa/internal/server"
	"github.com/hyperjump/serupa/pkg/utils"
)

func newServerCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(g)
		},
	}
}

func runServer(g *globalFlags) error {
	cfg, configPath, err := loadConfig(g.configPath)
	if err != nil {
		return err
	}
	debugMode := cfg.Debug || g.debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", configPath),
		zap.String("models_dir", cfg.Models.Dir),
		zap.Bool("debug", debugMode),
	)

	normalizer, err := newNormalizer(cfg)
	if err != nil {
		return err
	}

	// A failed load leaves the server up: health reports model_loaded false and
	// search answers 503.
	a, err := assets.Load(cfg, logger)
	if err != nil {
		logger.Error("Failed to load model", zap.Error(err))
		a = nil
	} else {
		defer a.Close()
	}

	engine := search.NewEngine(normalizer, a, search.WithLogger(logger))
	srv := server.NewServer(engine, &cfg.Server, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSec)*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
