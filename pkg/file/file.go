package file

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// File describes a stored object.
type File struct {
	Key      string
	Size     int64
	MIMEType string
	URL      string
}

// Storage is implemented by LocalStorage and S3Storage.
type Storage interface {
	// Save writes the upload under key.
	Save(ctx context.Context, fh *multipart.FileHeader, key string) (*File, error)
	// Delete removes key. Missing keys yield ErrFileNotFound.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of key.
	URL(key string) string
}

// MIMEType sniffs the content type from the first 512 bytes of the upload.
func MIMEType(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// IsImage reports whether the sniffed content type is image/*.
// The client-declared Content-Type and file extension are ignored.
func IsImage(fh *multipart.FileHeader) bool {
	mt, err := MIMEType(fh)
	return err == nil && strings.HasPrefix(mt, "image/")
}

// ValidateSize rejects uploads larger than maxBytes.
func ValidateSize(fh *multipart.FileHeader, maxBytes int64) error {
	if fh == nil {
		return ErrNilFileHeader
	}
	if fh.Size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", fh.Size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// RandomKey returns a random object key that keeps the upload's extension.
func RandomKey(fh *multipart.FileHeader) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)

	ext := ""
	if fh != nil {
		ext = strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(fh.Filename, "\\", "/"))))
		if len(ext) > 10 || strings.ContainsAny(ext, "/\x00") {
			ext = ""
		}
	}
	return hex.EncodeToString(b) + ext
}

// SaveImage validates that fh is an image no larger than maxBytes and stores
// it under a random key.
func SaveImage(ctx context.Context, s Storage, fh *multipart.FileHeader, maxBytes int64) (*File, error) {
	if err := ValidateSize(fh, maxBytes); err != nil {
		return nil, err
	}
	if !IsImage(fh) {
		return nil, ErrNotImage
	}
	return s.Save(ctx, fh, RandomKey(fh))
}

// KeyFromURL returns the key of a URL produced by s.URL. ok is false for
// URLs that point elsewhere, e.g. an external avatar.
func KeyFromURL(s Storage, url string) (key string, ok bool) {
	base := s.URL("")
	if base == "" {
		return "", false
	}
	key, ok = strings.CutPrefix(url, base)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
