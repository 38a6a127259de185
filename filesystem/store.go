// Package filesystem provides the file system storage backend for gallery.
// Files live under one directory per country inside a sandboxed root. Writes
// go to a temp file first and are renamed into place.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sagarc03/gallery"
)

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Get opens a file for reading. Returns gallery.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, country, filename string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path.Join(country, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, gallery.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, gallery.ErrNotFound
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to country/filename using a temp file and
// rename. The country directory is created as needed. The operation respects
// context cancellation; a failed write leaves nothing behind.
func (s *Store) Write(ctx context.Context, country, filename string, content io.Reader) (gallery.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return gallery.SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return gallery.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !success {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	fileSizeBytes, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return gallery.SaveResult{}, fmt.Errorf("could not copy file contents: %w", noSpace(err))
	}

	if err = t.Sync(); err != nil {
		return gallery.SaveResult{}, fmt.Errorf("could not sync written file: %w", noSpace(err))
	}

	if err := s.root.MkdirAll(country, 0o755); err != nil {
		return gallery.SaveResult{}, fmt.Errorf("could not create country directory: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, path.Join(country, filename)); renameErr != nil {
		return gallery.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true
	return gallery.SaveResult{BytesWritten: fileSizeBytes}, nil
}

// Delete removes a file. Returns gallery.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, country, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(path.Join(country, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return gallery.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List returns the regular files in the country directory with their size,
// modification time and detected content type. Hidden files are skipped.
func (s *Store) List(ctx context.Context, country string) ([]gallery.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.root.FS(), country)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []gallery.StoredObject{}, nil
		}
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	objects := make([]gallery.StoredObject, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() || !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}

		objects = append(objects, gallery.StoredObject{
			Country:     country,
			Filename:    entry.Name(),
			Size:        info.Size(),
			ContentType: s.detectContentType(country, entry.Name()),
			ModTime:     info.ModTime(),
		})
	}

	return objects, nil
}

func (s *Store) detectContentType(country, filename string) string {
	f, err := s.root.Open(path.Join(country, filename))
	if err != nil {
		return gallery.DetectContentType(filename, nil)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", filename, "err", closeErr)
		}
	}()

	return gallery.DetectContentType(filename, f)
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}

// noSpace tags a full-disk error with gallery.ErrStorageFull.
func noSpace(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %w", gallery.ErrStorageFull, err)
	}
	return err
}
