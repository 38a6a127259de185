package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/gallery"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MessageResponse is returned by mutations that carry no payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UploadResponse is returned by a successful upload.
type UploadResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Files   []gallery.FileRecord `json:"files"`
}

// ListResponse is returned when listing a country's files.
type ListResponse struct {
	Success bool                 `json:"success"`
	Files   []gallery.ListedFile `json:"files"`
}

// CountriesResponse is returned by the country registry endpoint.
type CountriesResponse struct {
	Success   bool              `json:"success"`
	Countries []gallery.Country `json:"countries"`
}

const storageFullMessage = "Storage full: please free up disk space"

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// A *gallery.Error in the chain supplies the client-facing message.
func HandleError(w http.ResponseWriter, err error) {
	code, message := classify(err)

	if code >= http.StatusInternalServerError {
		slog.Error("request error", "error", err)
	} else {
		slog.Warn("request rejected", "status", code, "error", err)
	}

	WriteError(w, code, message)
}

func classify(err error) (int, string) {
	var gerr *gallery.Error
	hasMessage := errors.As(err, &gerr) && gerr.Message != ""
	withMessage := func(code int, fallback string) (int, string) {
		if hasMessage {
			return code, gerr.Message
		}
		return code, fallback
	}

	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, gallery.ErrStorageFull):
		return http.StatusInternalServerError, storageFullMessage
	case errors.Is(err, gallery.ErrNotFound):
		return withMessage(http.StatusNotFound, "Not found")
	case errors.Is(err, gallery.ErrForbidden):
		return withMessage(http.StatusForbidden, "Forbidden")
	case errors.Is(err, gallery.ErrTooLarge), errors.As(err, &maxBytes):
		return withMessage(http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, gallery.ErrInvalidInput):
		return withMessage(http.StatusBadRequest, "Invalid request")
	}

	// Default internal error
	return http.StatusInternalServerError, "Internal server error"
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
