package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/gallery/config"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Reconcile metadata with the upload directory",
	Long: `Scan every country directory and bring the metadata index in line with
the files on disk. It:
  1. Drops records whose file no longer exists
  2. Adds records for files that have none

Adopted files have no uploader, so nobody can delete them through the API.
Run this after restoring files by hand or after the metadata document was lost
or corrupted.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, closeStorage, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	slog.Info("starting rebuild", "storage", cfg.Storage.Path)

	result, err := service.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	slog.Info("rebuild complete", "adopted", result.Adopted, "pruned", result.Pruned)
	cmd.Printf("adopted %d file(s), pruned %d record(s)\n", result.Adopted, result.Pruned)
	return nil
}
