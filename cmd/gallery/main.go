package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/gallery/config"
)

var version = "dev"

// logCloser is the rotating log file opened by PersistentPreRunE, if any.
var logCloser io.Closer

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "gallery",
	Short:   "Country photo gallery server",
	Long: `Gallery serves a world map landing page and a per-country file
gallery. Uploaded files are stored on the local filesystem, one directory per
country, with their metadata in a single JSON document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logCloser, err = setupLogging(cfg.Log, cfg.Env)
		if err != nil {
			return fmt.Errorf("setup logging: %w", err)
		}

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("storage-path", "", "upload directory (default: ./uploads, env: GALLERY_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("countries-file", "", "YAML file replacing the built-in country table (env: GALLERY_COUNTRIES_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: GALLERY_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this rotated file (env: GALLERY_LOG_FILE)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
