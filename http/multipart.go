package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/sagarc03/gallery"
)

// uploadField is the multipart form field carrying files.
const uploadField = "files"

// multipartParts streams the file parts of a multipart body to the service
// without buffering them. Parts under other field names, or without a file
// name, are skipped.
type multipartParts struct {
	reader  *multipart.Reader
	current *multipart.Part
}

func newMultipartParts(r *http.Request) (*multipartParts, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("read multipart: %w", &gallery.Error{
			Kind:    gallery.ErrInvalidInput,
			Message: "No files uploaded",
		})
	}
	return &multipartParts{reader: mr}, nil
}

func (m *multipartParts) Next() (gallery.UploadPart, error) {
	m.closeCurrent()

	for {
		part, err := m.reader.NextPart()
		if errors.Is(err, io.EOF) {
			return gallery.UploadPart{}, io.EOF
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return gallery.UploadPart{}, fmt.Errorf("next part: %w", &gallery.Error{
					Kind:    gallery.ErrTooLarge,
					Message: "Upload exceeds the request size limit",
				})
			}
			return gallery.UploadPart{}, fmt.Errorf("next part: %w", &gallery.Error{
				Kind:    gallery.ErrInvalidInput,
				Message: "Malformed multipart body",
			})
		}

		if part.FormName() != uploadField || part.FileName() == "" {
			slog.Debug("skipping multipart field", "field", part.FormName())
			_ = part.Close()
			continue
		}

		m.current = part
		return gallery.UploadPart{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Content:     part,
		}, nil
	}
}

func (m *multipartParts) closeCurrent() {
	if m.current != nil {
		_ = m.current.Close()
		m.current = nil
	}
}
