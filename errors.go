package gallery

import "errors"

var (
	// ErrNotFound is returned when a country, file record, or stored file does not exist
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when the caller is not the recorded uploader
	ErrForbidden = errors.New("forbidden")
	// ErrTooLarge is returned when an uploaded file exceeds the size limit
	ErrTooLarge = errors.New("file too large")
	// ErrStorageFull is returned when the device has no space left for metadata
	ErrStorageFull = errors.New("storage full")
)

// Error pairs one of the sentinel errors above with a message that is safe to
// show to clients. errors.Is matches the sentinel through Unwrap.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}
