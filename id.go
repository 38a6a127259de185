package gallery

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces collision-resistant identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator issues time-ordered UUIDv7 identifiers.
type UUIDv7Generator struct{}

func (UUIDv7Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// randomSuffix returns the trailing random hex of an identifier,
// used to keep stored file names short.
func randomSuffix(id string) string {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 12 {
		return s[len(s)-12:]
	}
	return s
}
