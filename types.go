package gallery

import (
	"io"
	"time"
)

// FileRecord is the metadata entry of one uploaded file.
// The JSON field names are the wire and on-disk format.
type FileRecord struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Path         string    `json:"path"`
	UploadedBy   string    `json:"uploadedBy,omitempty"`
}

// ListedFile is a FileRecord annotated for a specific requester.
type ListedFile struct {
	FileRecord
	CanEditCaption bool `json:"canEditCaption"`
}

// Index maps a country slug to its file records in display order.
type Index map[string][]FileRecord

// Find returns the position of the record with the given id, or -1.
func (idx Index) Find(country, id string) int {
	for i, rec := range idx[country] {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// UploadPart is one file of an upload request.
type UploadPart struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// PartSource yields the files of an upload one at a time.
// Next returns io.EOF once there are no more parts.
type PartSource interface {
	Next() (UploadPart, error)
}

// SliceParts is a PartSource over a fixed list of parts.
type SliceParts []UploadPart

func (s *SliceParts) Next() (UploadPart, error) {
	if len(*s) == 0 {
		return UploadPart{}, io.EOF
	}
	p := (*s)[0]
	*s = (*s)[1:]
	return p, nil
}

// StoredObject describes a file found in storage.
type StoredObject struct {
	Country     string
	Filename    string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// SaveResult is returned by FileStorage.Write.
type SaveResult struct {
	BytesWritten int64
}

// FileInfo describes a file opened for streaming.
type FileInfo struct {
	Filename    string
	ContentType string
	ModTime     time.Time
}

// RebuildResult reports what a rebuild changed in the index.
type RebuildResult struct {
	Adopted int
	Pruned  int
}
