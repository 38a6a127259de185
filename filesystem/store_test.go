package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/sagarc03/gallery"
	"github.com/sagarc03/gallery/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	return filesystem.NewFileStorage(root), tempDir
}

func TestStore_Get_Success(t *testing.T) {
	store, tempDir := newStore(t)

	content := []byte("test content")
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "spain"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "spain", "test.txt"), content, 0o644))

	result, err := store.Get(context.Background(), "spain", "test.txt")
	require.NoError(t, err)

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.NoError(t, result.Close())
}

func TestStore_Get_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Get(ctx, "spain", "test.txt")

	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Get_NotFound(t *testing.T) {
	store, _ := newStore(t)

	result, err := store.Get(context.Background(), "spain", "nonexistent.txt")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, gallery.ErrNotFound)
}

func TestStore_Get_DirectoryIsNotFound(t *testing.T) {
	store, tempDir := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "spain", "nested"), 0o755))

	_, err := store.Get(context.Background(), "spain", "nested")

	assert.ErrorIs(t, err, gallery.ErrNotFound)
}

func TestStore_Get_TraversalRejected(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "spain", "../../etc/passwd")

	assert.Error(t, err)
}

func TestStore_Write_CreatesCountryDirectory(t *testing.T) {
	store, tempDir := newStore(t)

	result, err := store.Write(context.Background(), "japan", "photo.png", bytes.NewReader([]byte("nested content")))

	require.NoError(t, err)
	assert.Equal(t, int64(14), result.BytesWritten)

	data, err := os.ReadFile(filepath.Join(tempDir, "japan", "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("nested content"), data)
}

func TestStore_Write_ContextCanceledBefore(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Write(ctx, "japan", "test.txt", bytes.NewReader([]byte("test")))

	assert.Equal(t, int64(0), result.BytesWritten)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Write_ContextCanceledDuringCopy(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	reader := &slowReader{data: []byte("test content"), cancel: cancel}

	result, err := store.Write(ctx, "japan", "test.txt", reader)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), result.BytesWritten)
	assertNoLeftovers(t, tempDir)
}

func TestStore_Write_ReaderErrorLeavesNothing(t *testing.T) {
	store, tempDir := newStore(t)
	boom := errors.New("boom")

	_, err := store.Write(context.Background(), "japan", "test.txt", io.MultiReader(
		bytes.NewReader([]byte("partial")),
		errReader{err: boom},
	))

	assert.ErrorIs(t, err, boom)
	assertNoLeftovers(t, tempDir)
	_, statErr := os.Stat(filepath.Join(tempDir, "japan", "test.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_Write_NoSpaceIsStorageFull(t *testing.T) {
	store, tempDir := newStore(t)

	_, err := store.Write(context.Background(), "japan", "test.txt", errReader{err: syscall.ENOSPC})

	assert.ErrorIs(t, err, gallery.ErrStorageFull)
	assert.ErrorIs(t, err, syscall.ENOSPC)
	assertNoLeftovers(t, tempDir)
}

type slowReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *slowReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func assertNoLeftovers(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.Name()[0] == '.', "temp file left behind: %s", e.Name())
	}
}

func TestStore_Delete_Success(t *testing.T) {
	store, tempDir := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "spain"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "spain", "test.txt"), []byte("content"), 0o644))

	err := store.Delete(context.Background(), "spain", "test.txt")
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(tempDir, "spain", "test.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Delete_NotFound(t *testing.T) {
	store, _ := newStore(t)

	err := store.Delete(context.Background(), "spain", "nonexistent.txt")

	assert.ErrorIs(t, err, gallery.ErrNotFound)
}

func TestStore_Delete_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, context.Canceled, store.Delete(ctx, "spain", "test.txt"))
}

func TestStore_List_Success(t *testing.T) {
	store, tempDir := newStore(t)
	dir := filepath.Join(tempDir, "spain")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noext"), []byte("\x89PNG\r\n\x1a\n0000"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))

	objects, err := store.List(context.Background(), "spain")
	require.NoError(t, err)
	require.Len(t, objects, 2)

	byName := make(map[string]gallery.StoredObject)
	for _, obj := range objects {
		byName[obj.Filename] = obj
	}

	assert.Equal(t, int64(7), byName["data.json"].Size)
	assert.Equal(t, "application/json", byName["data.json"].ContentType)
	assert.Equal(t, "spain", byName["data.json"].Country)
	assert.Equal(t, "image/png", byName["noext"].ContentType)
	assert.False(t, byName["noext"].ModTime.IsZero())
}

func TestStore_List_MissingCountryIsEmpty(t *testing.T) {
	store, _ := newStore(t)

	objects, err := store.List(context.Background(), "chile")

	assert.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)
}

func TestStore_List_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	objects, err := store.List(ctx, "spain")

	assert.Nil(t, objects)
	assert.Equal(t, context.Canceled, err)
}
