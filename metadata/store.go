package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"github.com/google/uuid"
	"github.com/sagarc03/gallery"
)

// DefaultFileName is the name of the metadata document inside the storage root.
const DefaultFileName = "metadata.json"

// JSONStore implements gallery.MetadataStore on top of a JSON file.
type JSONStore struct {
	root *os.Root
	name string
}

// NewJSONStore creates a store for the document name inside root.
func NewJSONStore(root *os.Root, name string) *JSONStore {
	if name == "" {
		name = DefaultFileName
	}
	return &JSONStore{root: root, name: name}
}

// Load reads the document. A missing, empty or corrupted document yields an
// empty Index; only context cancellation is reported as an error.
func (s *JSONStore) Load(ctx context.Context) (gallery.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.root.ReadFile(s.name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("error reading metadata file", "file", s.name, "err", err)
		}
		return gallery.Index{}, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return gallery.Index{}, nil
	}

	var idx gallery.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		slog.Warn("metadata file is corrupted, treating as empty", "file", s.name, "err", err)
		return gallery.Index{}, nil
	}

	if idx == nil {
		idx = gallery.Index{}
	}
	return idx, nil
}

// Save serializes idx and atomically replaces the document.
// Running out of disk space is reported as gallery.ErrStorageFull.
func (s *JSONStore) Save(ctx context.Context, idx gallery.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if idx == nil {
		idx = gallery.Index{}
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("save metadata: encode: %w", err)
	}

	tmpFile := fmt.Sprintf(".m%s", uuid.New().String())
	t, err := s.root.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("save metadata: %w", classify(err))
	}

	success := false
	defer func() {
		if !success {
			_ = t.Close()
			if rmErr := s.root.Remove(tmpFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("failed to remove tmp metadata file", "err", rmErr)
			}
		}
	}()

	if _, err := t.Write(data); err != nil {
		return fmt.Errorf("save metadata: write: %w", classify(err))
	}

	if err := t.Sync(); err != nil {
		return fmt.Errorf("save metadata: sync: %w", classify(err))
	}

	if err := t.Close(); err != nil {
		return fmt.Errorf("save metadata: close: %w", classify(err))
	}

	if err := s.root.Rename(tmpFile, s.name); err != nil {
		return fmt.Errorf("save metadata: rename: %w", classify(err))
	}

	success = true
	return nil
}

func classify(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		slog.Error("no space left on device, cannot save metadata", "err", err)
		return fmt.Errorf("%w: %w", gallery.ErrStorageFull, err)
	}
	return err
}
