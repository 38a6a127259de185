package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/gallery"
	"github.com/sagarc03/gallery/config"
	"github.com/sagarc03/gallery/filesystem"
	"github.com/sagarc03/gallery/metadata"
)

// openService builds the gallery service over cfg.Storage.Path, creating the
// directory when missing. The returned func closes the storage root.
func openService(cfg *config.Config) (*gallery.GalleryService, func(), error) {
	countries, err := loadCountries(cfg.Countries)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}
	closeRoot := func() { _ = root.Close() }

	service, err := gallery.NewGalleryService(
		countries,
		metadata.NewJSONStore(root, cfg.Storage.MetadataFile),
		filesystem.NewFileStorage(root),
		gallery.ServiceConfig{
			MaxFiles:       cfg.Upload.MaxFiles,
			MaxFileSize:    cfg.Upload.MaxFileSize,
			CleanupTimeout: cfg.Upload.CleanupTimeout,
		},
	)
	if err != nil {
		closeRoot()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, closeRoot, nil
}

func loadCountries(cfg config.CountriesConfig) (*gallery.CountryRegistry, error) {
	if cfg.File == "" {
		return gallery.DefaultCountries(), nil
	}

	reg, err := gallery.LoadCountriesFile(cfg.File)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded country table", "file", cfg.File, "countries", reg.Len())
	return reg, nil
}
