package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "avatars"), "/avatars/")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("save and delete", func(t *testing.T) {
		f, err := store.Save(ctx, newFileHeader(t, "a.png", pngHeader), "abc.png")
		require.NoError(t, err)
		assert.Equal(t, "abc.png", f.Key)
		assert.Equal(t, int64(len(pngHeader)), f.Size)
		assert.Equal(t, "/avatars/abc.png", f.URL)

		data, err := os.ReadFile(filepath.Join(store.Dir(), "abc.png"))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)

		require.NoError(t, store.Delete(ctx, "abc.png"))
		assert.ErrorIs(t, store.Delete(ctx, "abc.png"), ErrFileNotFound)
	})

	t.Run("path traversal", func(t *testing.T) {
		_, err := store.Save(ctx, newFileHeader(t, "a.png", pngHeader), "../escape.png")
		assert.ErrorIs(t, err, ErrInvalidPath)
		assert.NoFileExists(t, filepath.Join(dir, "escape.png"))

		assert.ErrorIs(t, store.Delete(ctx, "../../etc/passwd"), ErrInvalidPath)
		assert.ErrorIs(t, store.Delete(ctx, ""), ErrInvalidPath)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Save(cctx, newFileHeader(t, "a.png", pngHeader), "x.png")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := New(context.Background(), Config{Driver: DriverLocal, Dir: t.TempDir(), BaseURL: "/a/"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), Config{Driver: "ftp"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(context.Background(), Config{Driver: DriverS3})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewLocalStorage("", "/")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
