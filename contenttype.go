package gallery

import (
	"io"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// DetectContentType infers a media type from the file extension and, when the
// extension is unknown, from the leading bytes of r. r is rewound afterwards.
func DetectContentType(name string, r io.ReadSeeker) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}

	if r == nil {
		return defaultContentType
	}

	mt, err := mimetype.DetectReader(r)
	if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil || err != nil {
		return defaultContentType
	}

	return mt.String()
}
