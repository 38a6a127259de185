package metadata

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/sagarc03/gallery"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	full := &fs.PathError{Op: "write", Path: "metadata.json", Err: syscall.ENOSPC}
	err := classify(full)
	assert.ErrorIs(t, err, gallery.ErrStorageFull)
	assert.ErrorIs(t, err, syscall.ENOSPC)

	other := &fs.PathError{Op: "write", Path: "metadata.json", Err: syscall.EACCES}
	err = classify(other)
	assert.False(t, errors.Is(err, gallery.ErrStorageFull))
	assert.Equal(t, other, err)
}
