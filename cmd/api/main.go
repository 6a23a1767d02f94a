// Package main is the entrypoint for the covers API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tsunderebot/covers/internal/auth"
	"github.com/tsunderebot/covers/internal/config"
	"github.com/tsunderebot/covers/internal/handler"
	"github.com/tsunderebot/covers/internal/metrics"
	"github.com/tsunderebot/covers/internal/repository"
	"github.com/tsunderebot/covers/internal/server"
	"github.com/tsunderebot/covers/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Connect to the grid store; the URL scheme picks the backend.
	storeURL := cfg.StoreURL()
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	store, err := repository.Open(connectCtx, repository.Options{
		URL:           storeURL,
		MongoDatabase: cfg.MongoDatabase,
	})
	cancel()
	if err != nil {
		logger.Error(
			"failed to connect to grid store",
			slog.String("error", config.SanitizeError(err, storeURL)),
			slog.String("store_url", config.RedactURL(storeURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to grid store", slog.String("backend", string(store.Backend())))

	verifier, err := auth.NewOIDCVerifier(auth.VerifierConfig{
		Issuer:   cfg.OIDCIssuer,
		ClientID: cfg.GoogleClientID,
	})
	if err != nil {
		logger.Error("failed to initialise token verifier", "error", err)
		_ = store.Close(context.Background())
		os.Exit(1)
	}

	// Initialize services
	recorder := metrics.NewInMemory()
	proxyClient := service.NewProxyHTTPClient(service.ProxyConfig{
		DialTimeout:           cfg.ProxyDialTimeout,
		ResponseHeaderTimeout: cfg.ProxyResponseHeaderTimeout,
		BlockPrivateNetworks:  cfg.ProxyBlockPrivateNetworks,
	})
	gridService := service.NewGridService(store, logger, recorder)
	proxyService := service.NewProxyService(proxyClient, logger, recorder)

	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		Verifier:           verifier,
		Metrics:            recorder,
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Grids:              handler.NewGridHandler(gridService, logger),
		Proxy:              handler.NewProxyHandler(proxyService, logger, recorder),
		Health:             handler.NewHealthHandler(string(store.Backend()), store),
		MetricsHandler:     handler.NewMetricsHandler(recorder),
	})

	srv := server.New(router, server.Options{
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("grid store", store.Close)
	srv.OnShutdown("proxy client", func(context.Context) error {
		proxyClient.CloseIdleConnections()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"issuer", cfg.OIDCIssuer,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
