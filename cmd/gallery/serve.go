package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sagarc03/gallery/config"
	galleryhttp "github.com/sagarc03/gallery/http"
	"github.com/sagarc03/gallery/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the gallery HTTP server.

With --rebuild the metadata index is reconciled with the upload directory
before the server starts accepting requests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port (env: GALLERY_SERVER_PORT or PORT)")
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP listen address")
	serveCmd.Flags().Bool("rebuild", false, "reconcile metadata with stored files before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, closeStorage, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	if rebuild, _ := cmd.Flags().GetBool("rebuild"); rebuild {
		result, err := service.Rebuild(ctx)
		if err != nil {
			return fmt.Errorf("rebuild metadata: %w", err)
		}
		slog.Info("metadata rebuilt", "adopted", result.Adopted, "pruned", result.Pruned)
	}

	handlerConfig := galleryhttp.HandlerConfig{
		CORS:                cfg.CORS,
		MaxUploadBytes:      cfg.Upload.MaxRequestSize(),
		UploadRatePerMinute: cfg.Upload.RatePerMinute,
		Metrics:             cfg.Metrics.Enabled,
		Pages:               web.Pages(),
	}

	handler := galleryhttp.NewHandler(&handlerConfig, service)

	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"storage", cfg.Storage.Path,
		"countries", service.Countries().Len(),
		"max_files", cfg.Upload.MaxFiles,
		"max_file_size", humanize.IBytes(uint64(cfg.Upload.MaxFileSize)),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
