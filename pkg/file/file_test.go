package file

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/", body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(1<<20))
	t.Cleanup(func() { _ = r.MultipartForm.RemoveAll() })

	return r.MultipartForm.File["avatar"][0]
}

func TestIsImage(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImage(newFileHeader(t, "me.png", pngHeader)))
	assert.False(t, IsImage(newFileHeader(t, "me.png", []byte("just text, renamed"))))
	assert.False(t, IsImage(nil))
}

func TestValidateSize(t *testing.T) {
	t.Parallel()

	fh := newFileHeader(t, "a.png", pngHeader)
	require.NoError(t, ValidateSize(fh, 1024))
	assert.ErrorIs(t, ValidateSize(fh, 4), ErrFileTooLarge)
	assert.ErrorIs(t, ValidateSize(nil, 4), ErrNilFileHeader)
}

func TestRandomKey(t *testing.T) {
	t.Parallel()

	k1 := RandomKey(newFileHeader(t, `..\..\evil.PNG`, pngHeader))
	k2 := RandomKey(newFileHeader(t, "evil.png", pngHeader))
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasSuffix(k1, ".png"))
	assert.NotContains(t, k1, "/")
	assert.Len(t, RandomKey(nil), 32)
}

func TestSaveImage(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStorage(t.TempDir(), "/avatars")
	require.NoError(t, err)
	ctx := context.Background()

	f, err := SaveImage(ctx, store, newFileHeader(t, "me.png", pngHeader), 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MIMEType)
	assert.True(t, strings.HasPrefix(f.URL, "/avatars/"))

	_, err = SaveImage(ctx, store, newFileHeader(t, "me.png", []byte("hello")), 1024)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = SaveImage(ctx, store, newFileHeader(t, "me.png", pngHeader), 2)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestKeyFromURL(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStorage(t.TempDir(), "/avatars/")
	require.NoError(t, err)

	f, err := SaveImage(context.Background(), store, newFileHeader(t, "me.png", pngHeader), 1024)
	require.NoError(t, err)

	key, ok := KeyFromURL(store, f.URL)
	require.True(t, ok)
	assert.Equal(t, f.Key, key)
	require.NoError(t, store.Delete(context.Background(), key))

	for _, url := range []string{"https://example.com/a.png", "/avatars/", ""} {
		_, ok := KeyFromURL(store, url)
		assert.False(t, ok, url)
	}

	bare, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	_, ok = KeyFromURL(bare, "abc.png")
	assert.False(t, ok)
}
