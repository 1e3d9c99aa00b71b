package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inkpress/internal/ai"
	"inkpress/internal/batch"
	"inkpress/internal/database"
	"inkpress/internal/handlers"
	"inkpress/internal/metrics"
	"inkpress/internal/render"
	"inkpress/internal/router"
	"inkpress/internal/slug"
	"inkpress/internal/storage"
	"inkpress/internal/store"
	"inkpress/internal/textgen"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireAI(); err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	poolStats := metrics.NewPoolStatsCollector(db)
	poolStats.Start(15 * time.Second)
	defer poolStats.Stop()

	registry, err := newRegistry("")
	if err != nil {
		return err
	}
	articles := store.NewArticleStore(db)
	slugs := slug.NewAllocator(articles)
	runner := batch.NewRunner(textgen.New(registry), slugs, articles, cfg.SlugMaxAttempts).
		WithItemTimeout(cfg.AI.Timeout)

	opts := handlers.Options{
		GenerationTimeout: cfg.AI.Timeout,
		MaxSlugAttempts:   cfg.SlugMaxAttempts,
	}
	images, err := storage.New(storage.Config{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		PublicURL: cfg.S3.PublicURL,
	})
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}
	// Only a non-nil client goes into the interface.
	if images != nil {
		opts.Images = images
		slog.Info("object storage connected", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.Bucket)
	} else {
		slog.Warn("object storage not configured, featured image uploads disabled")
	}

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("template renderer: %w", err)
	}

	rt := router.New(
		handlers.NewAPI(articles, runner, slugs, opts),
		handlers.NewBlog(articles, renderer),
		router.Options{HSTS: !cfg.IsDev()},
	)

	// WriteTimeout must outlast one generation, which can take the whole AI
	// timeout. The batch handler extends the deadline per title.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           rt,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AI.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newRegistry builds the provider registry from configuration. A non-empty
// provider overrides AI_PROVIDER as the active one.
func newRegistry(provider string) (*ai.Registry, error) {
	registry := ai.NewRegistry(cfg.AI.Provider, cfg.ProviderConfigs())
	if provider != "" {
		if err := registry.SetActive(provider); err != nil {
			return nil, err
		}
	} else if !registry.HasProvider(cfg.AI.Provider) {
		return nil, fmt.Errorf("ai: provider %q is not available", cfg.AI.Provider)
	}
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
	)
	return registry, nil
}
