package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"custseg/config"
	qhttp "custseg/http"
	"custseg/logging"
	"custseg/monitoring"
	"custseg/pipeline"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger, _ := logging.New(config.Default().Log)
		logger.Fatal("failed to load config", zap.String("path", *configPath), zap.Error(err))
	}

	// 2. Initialize logging
	logger, level := logging.New(cfg.Log)
	defer logger.Sync()

	// 3. Load model artifacts
	metrics := monitoring.NewMetrics()
	segmentor, err := pipeline.Open(cfg.Artifacts,
		pipeline.WithCache(cfg.Cache.Size),
		pipeline.WithRecorder(metrics),
	)
	if err != nil {
		logger.Fatal("failed to load model artifacts", zap.Error(err))
	}
	defer segmentor.Close()
	logger.Info("model artifacts loaded",
		zap.String("scaler", cfg.Artifacts.Scaler.Path),
		zap.String("classifier", cfg.Artifacts.Classifier.Path),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Follow log level changes in the config file
	err = config.Watch(ctx, *configPath,
		func(updated *config.Config) {
			next := logging.ParseLevel(updated.Log.Level)
			if next != level.Level() {
				level.SetLevel(next)
				logger.Info("log level changed", zap.Stringer("level", next))
			}
		},
		func(err error) {
			logger.Warn("config reload failed", zap.Error(err))
		},
	)
	if err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
	}

	// 5. Start HTTP server
	handlers := qhttp.NewHandlers(segmentor, metrics, logger)
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:         cfg.Http.Port,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		MaxBodyBytes: cfg.Http.MaxBodyBytes,
	}, handlers, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 6. Handle graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			segmentor.Close()
			os.Exit(1)
		}
	}

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}
