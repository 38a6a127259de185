package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultMaxFiles is the number of files accepted by a single upload.
	DefaultMaxFiles = 10
	// DefaultMaxFileSize is the per-file size limit (50 MiB).
	DefaultMaxFileSize int64 = 50 << 20
)

// MetadataStore persists the whole Index as a single document.
//
// Load never fails because of a missing, empty or unreadable document; it
// returns an empty Index instead. Save replaces the full document and reports
// ErrStorageFull when the device is out of space.
type MetadataStore interface {
	Load(ctx context.Context) (Index, error)
	Save(ctx context.Context, idx Index) error
}

// FileStorage defines the interface for physical file storage operations.
// Files are addressed by country slug and stored file name.
//
// All methods accept a context for cancellation. Implementations should
// respect context cancellation during long-running writes.
type FileStorage interface {
	// Get opens a stored file for reading.
	// Returns ErrNotFound if the file does not exist.
	// The caller is responsible for closing the returned ReadSeekCloser.
	Get(ctx context.Context, country, filename string) (io.ReadSeekCloser, error)

	// Write stores content under country/filename, creating the country
	// directory if needed. Implementations should write atomically and clean
	// up partial writes on failure.
	Write(ctx context.Context, country, filename string, content io.Reader) (SaveResult, error)

	// Delete removes a stored file.
	// Returns ErrNotFound if the file does not exist.
	Delete(ctx context.Context, country, filename string) error

	// List returns the files stored for a country, or an empty slice when the
	// country has no directory yet.
	List(ctx context.Context, country string) ([]StoredObject, error)
}

// GalleryService combines the country registry, metadata store and file
// storage into the upload, list, fetch and delete operations.
type GalleryService struct {
	countries      *CountryRegistry
	meta           MetadataStore
	storage        FileStorage
	ids            IDGenerator
	now            func() time.Time
	maxFiles       int
	maxFileSize    int64
	cleanupTimeout time.Duration

	// mu guards every read-modify-write cycle of the metadata document.
	mu sync.Mutex
}

// ServiceConfig holds configuration options for GalleryService.
type ServiceConfig struct {
	MaxFiles       int           // default: DefaultMaxFiles
	MaxFileSize    int64         // default: DefaultMaxFileSize
	CleanupTimeout time.Duration // Timeout for rollback deletes (default: 30s)
	IDs            IDGenerator   // default: UUIDv7Generator
	Clock          func() time.Time
}

func NewGalleryService(countries *CountryRegistry, meta MetadataStore, storage FileStorage, cfg ServiceConfig) (*GalleryService, error) {
	if countries == nil || meta == nil || storage == nil {
		return nil, errors.New("new gallery service: countries, metadata store and storage are required")
	}

	s := &GalleryService{
		countries:      countries,
		meta:           meta,
		storage:        storage,
		ids:            cfg.IDs,
		now:            cfg.Clock,
		maxFiles:       cfg.MaxFiles,
		maxFileSize:    cfg.MaxFileSize,
		cleanupTimeout: cfg.CleanupTimeout,
	}

	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxFiles <= 0 {
		s.maxFiles = DefaultMaxFiles
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}
	if s.cleanupTimeout <= 0 {
		s.cleanupTimeout = 30 * time.Second
	}

	return s, nil
}

// Countries returns the registry the service validates uploads against.
func (s *GalleryService) Countries() *CountryRegistry {
	return s.countries
}

// NewUploaderID issues an identifier for a client that did not send one.
func (s *GalleryService) NewUploaderID() string {
	return "user-" + s.ids.NewID()
}

// Upload stores every part under the country's directory and appends one
// FileRecord per part to the metadata index.
//
// The method performs the following steps:
//  1. Validates the country against the registry
//  2. Writes each part to storage, enforcing the file count and size limits
//  3. Appends the new records and saves the index under the service lock
//
// If any step after the first write fails, every file written by this call is
// deleted again using a background context bounded by the cleanup timeout.
//
// Error types returned:
//   - ErrInvalidInput: unknown country, no parts, or too many parts
//   - ErrTooLarge: a part exceeds the size limit
//   - ErrStorageFull: the metadata document could not be written for lack of space
func (s *GalleryService) Upload(ctx context.Context, country, uploader string, parts PartSource) ([]FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	if _, ok := s.countries.Lookup(country); !ok {
		return nil, fmt.Errorf("upload: %w", newError(ErrInvalidInput, fmt.Sprintf("unknown country: %s", country)))
	}

	if uploader == "" {
		uploader = s.NewUploaderID()
	}

	var records []FileRecord
	committed := false
	defer func() {
		if !committed {
			s.discard(country, records)
		}
	}()

	for {
		part, err := parts.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("upload %s: read part: %w", country, err)
		}

		if len(records) >= s.maxFiles {
			return nil, fmt.Errorf("upload %s: %w", country,
				newError(ErrInvalidInput, fmt.Sprintf("too many files: at most %d per upload", s.maxFiles)))
		}

		rec, err := s.store(ctx, country, uploader, part)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", country, err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("upload %s: %w", country, newError(ErrInvalidInput, "No files uploaded"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.meta.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("upload %s: load metadata: %w", country, err)
	}
	if idx == nil {
		idx = Index{}
	}

	idx[country] = append(idx[country], records...)

	if err := s.meta.Save(ctx, idx); err != nil {
		return nil, fmt.Errorf("upload %s: save metadata: %w", country, err)
	}

	committed = true
	return records, nil
}

func (s *GalleryService) store(ctx context.Context, country, uploader string, part UploadPart) (FileRecord, error) {
	id := s.ids.NewID()
	now := s.now().UTC()
	filename := fmt.Sprintf("%d-%s-%s", now.UnixMilli(), randomSuffix(id), SanitizeFilename(part.Filename))

	content := &sizeLimitedReader{r: part.Content, limit: s.maxFileSize, name: part.Filename}

	res, err := s.storage.Write(ctx, country, filename, content)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return FileRecord{}, newError(ErrTooLarge, fmt.Sprintf("%s exceeds the %s limit",
				part.Filename, humanize.IBytes(uint64(s.maxFileSize))))
		}
		return FileRecord{}, fmt.Errorf("write %s: %w", part.Filename, err)
	}

	contentType := part.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	return FileRecord{
		ID:           id,
		OriginalName: part.Filename,
		Filename:     filename,
		Size:         res.BytesWritten,
		Type:         contentType,
		UploadedAt:   now,
		Path:         FileURL(country, filename),
		UploadedBy:   uploader,
	}, nil
}

// discard removes files written by an upload that did not commit.
func (s *GalleryService) discard(country string, records []FileRecord) {
	if len(records) == 0 {
		return
	}

	// Use background context for cleanup since original context may be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
	defer cancel()

	for _, rec := range records {
		err := s.storage.Delete(ctx, country, rec.Filename)
		if err != nil && !errors.Is(err, ErrNotFound) {
			slog.Warn("rollback: failed to remove uploaded file", "country", country, "file", rec.Filename, "err", err)
		}
	}
	slog.Info("rolled back upload", "country", country, "files", len(records))
}

// List returns the country's records in display order. An unknown country
// yields an empty list. CanEditCaption is set on records uploaded by requester.
func (s *GalleryService) List(ctx context.Context, country, requester string) ([]ListedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	s.mu.Lock()
	idx, err := s.meta.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	records := idx[country]
	out := make([]ListedFile, 0, len(records))
	for _, rec := range records {
		out = append(out, ListedFile{
			FileRecord:     rec,
			CanEditCaption: requester != "" && rec.UploadedBy == requester,
		})
	}

	return out, nil
}

// Open resolves a possibly percent-encoded stored file name and opens it.
// The decoded name is tried first, then the raw one.
func (s *GalleryService) Open(ctx context.Context, country, rawName string) (FileInfo, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, nil, fmt.Errorf("open file: %w", err)
	}

	if !IsValidSlug(country) {
		return FileInfo{}, nil, fmt.Errorf("open file: %w", newError(ErrNotFound, "File not found"))
	}

	for _, name := range decodeCandidates(rawName) {
		if !IsValidStoredName(name) {
			continue
		}

		f, err := s.storage.Get(ctx, country, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return FileInfo{}, nil, fmt.Errorf("open file %s/%s: %w", country, name, err)
		}

		info := FileInfo{Filename: name}
		if rec, ok := s.recordByFilename(ctx, country, name); ok {
			info.ContentType = rec.Type
			info.ModTime = rec.UploadedAt
		}
		if info.ContentType == "" {
			info.ContentType = DetectContentType(name, f)
		}

		return info, f, nil
	}

	return FileInfo{}, nil, fmt.Errorf("open file: %w", newError(ErrNotFound, "File not found"))
}

func (s *GalleryService) recordByFilename(ctx context.Context, country, filename string) (FileRecord, bool) {
	s.mu.Lock()
	idx, err := s.meta.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return FileRecord{}, false
	}

	for _, rec := range idx[country] {
		if rec.Filename == filename {
			return rec, true
		}
	}
	return FileRecord{}, false
}

// Delete removes a file record and its stored bytes.
//
// Error types returned:
//   - ErrInvalidInput: uploader is empty
//   - ErrNotFound: the country has no records or the id is unknown
//   - ErrForbidden: the record was uploaded by someone else (or by nobody)
func (s *GalleryService) Delete(ctx context.Context, country, id, uploader string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if uploader == "" {
		return fmt.Errorf("delete file: %w", newError(ErrInvalidInput, "User ID is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.meta.Load(ctx)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	records, ok := idx[country]
	if !ok {
		return fmt.Errorf("delete file: %w", newError(ErrNotFound, "Country not found"))
	}

	i := idx.Find(country, id)
	if i < 0 {
		return fmt.Errorf("delete file: %w", newError(ErrNotFound, "File not found"))
	}

	rec := records[i]
	if rec.UploadedBy == "" || rec.UploadedBy != uploader {
		return fmt.Errorf("delete file %s: %w", id, newError(ErrForbidden, "Only the file uploader can delete files"))
	}

	// Ignore ErrNotFound - the file may have been removed by hand
	if err := s.storage.Delete(ctx, country, rec.Filename); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete file %s: %w", id, err)
	}

	idx[country] = slices.Delete(records, i, i+1)

	if err := s.meta.Save(ctx, idx); err != nil {
		return fmt.Errorf("delete file %s: save metadata: %w", id, err)
	}

	return nil
}

// Rebuild reconciles the metadata index with the files in storage.
// Records whose file is gone are pruned. Files without a record in a known
// country directory are adopted with an empty uploader, which makes them
// undeletable through the API.
//
// Note: the index is only saved when something changed.
func (s *GalleryService) Rebuild(ctx context.Context) (RebuildResult, error) {
	if err := ctx.Err(); err != nil {
		return RebuildResult{}, fmt.Errorf("rebuild: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.meta.Load(ctx)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("rebuild: %w", err)
	}
	if idx == nil {
		idx = Index{}
	}

	countries := make([]string, 0, s.countries.Len()+len(idx))
	for _, c := range s.countries.All() {
		countries = append(countries, c.Slug)
	}
	for slug := range idx {
		if _, known := s.countries.Lookup(slug); !known {
			countries = append(countries, slug)
		}
	}

	var result RebuildResult
	for _, country := range countries {
		if !IsValidSlug(country) {
			continue
		}

		objects, err := s.storage.List(ctx, country)
		if err != nil {
			return result, fmt.Errorf("rebuild %s: %w", country, err)
		}

		adopted, pruned := s.reconcile(idx, country, objects)
		result.Adopted += adopted
		result.Pruned += pruned
	}

	if result.Adopted == 0 && result.Pruned == 0 {
		return result, nil
	}

	if err := s.meta.Save(ctx, idx); err != nil {
		return result, fmt.Errorf("rebuild: save metadata: %w", err)
	}

	return result, nil
}

func (s *GalleryService) reconcile(idx Index, country string, objects []StoredObject) (adopted, pruned int) {
	onDisk := make(map[string]StoredObject, len(objects))
	for _, obj := range objects {
		onDisk[obj.Filename] = obj
	}

	records := idx[country]
	kept := make([]FileRecord, 0, len(records))
	tracked := make(map[string]bool, len(records))
	for _, rec := range records {
		if _, ok := onDisk[rec.Filename]; !ok {
			pruned++
			continue
		}
		kept = append(kept, rec)
		tracked[rec.Filename] = true
	}

	var orphans []StoredObject
	for _, obj := range objects {
		if !tracked[obj.Filename] && IsValidStoredName(obj.Filename) {
			orphans = append(orphans, obj)
		}
	}
	sort.Slice(orphans, func(i, j int) bool {
		if orphans[i].ModTime.Equal(orphans[j].ModTime) {
			return orphans[i].Filename < orphans[j].Filename
		}
		return orphans[i].ModTime.Before(orphans[j].ModTime)
	})

	for _, obj := range orphans {
		kept = append(kept, FileRecord{
			ID:           s.ids.NewID(),
			OriginalName: OriginalNameFromStored(obj.Filename),
			Filename:     obj.Filename,
			Size:         obj.Size,
			Type:         obj.ContentType,
			UploadedAt:   obj.ModTime.UTC(),
			Path:         FileURL(country, obj.Filename),
		})
		adopted++
	}

	if len(kept) > 0 {
		idx[country] = kept
	} else if _, ok := idx[country]; ok {
		idx[country] = kept
	}

	return adopted, pruned
}

// sizeLimitedReader fails with ErrTooLarge once more than limit bytes were read.
type sizeLimitedReader struct {
	r     io.Reader
	n     int64
	limit int64
	name  string
}

func (l *sizeLimitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.limit {
		return 0, fmt.Errorf("%s: %w", l.name, ErrTooLarge)
	}
	return n, err
}
