package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-capture-backend/internal/config"
	"photo-capture-backend/internal/handlers"
	"photo-capture-backend/internal/repository"
	"photo-capture-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "photo-capture",
	Short:         "Photo capture backend",
	Long:          "HTTP service that stores uploaded photos and lets clients list, fetch and clear them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(configPath)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// Run loads configuration and serves until SIGINT/SIGTERM
func Run(path string) error {
	// Load configuration
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	setupLogger(cfg.Log)

	// Initialize storage
	repo, err := newPhotoRepository(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize photo storage: %w", err)
	}

	// Initialize services
	wsHub := services.NewWSHub()
	photoService := services.NewPhotoService(
		repo,
		services.NewNameGenerator(nil),
		wsHub,
		cfg.Storage.DeleteWorkers,
	)

	// Initialize handlers
	photoHandler := handlers.NewPhotoHandler(photoService, cfg.Storage.MaxUploadBytes)
	wsHandler := handlers.NewWebSocketHandler(wsHub, cfg.CORS.AllowedOrigins)
	healthHandler := handlers.NewHealthHandler(cfg.Storage.Backend)

	// Setup router
	r := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	}, photoHandler, wsHandler, healthHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Backend).
			Strs("allowed_origins", cfg.CORS.AllowedOrigins).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	wsHub.Close()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

func newPhotoRepository(ctx context.Context, cfg *config.Config) (repository.PhotoRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendS3:
		repo, err := repository.NewS3PhotoRepository(ctx, repository.S3Options{
			Region:    cfg.AWS.Region,
			Bucket:    cfg.AWS.S3Bucket,
			Prefix:    cfg.AWS.S3Prefix,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Endpoint:  cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Str("prefix", cfg.AWS.S3Prefix).Msg("S3 photo storage initialized")
		return repo, nil
	default:
		repo, err := repository.NewDiskPhotoRepository(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", cfg.Storage.Dir).Msg("Disk photo storage initialized")
		return repo, nil
	}
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
