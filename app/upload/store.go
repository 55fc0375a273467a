// Package upload stores item photos on the local filesystem.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// FieldName is the multipart field a photo must arrive under.
	FieldName = "photo"
	// MaxBytes is the upload size ceiling.
	MaxBytes = 1_000_000
)

var (
	ErrTooLarge = errors.New("photo exceeds the maximum allowed size")
	ErrBadType  = errors.New("photo must be a jpeg or png image")
)

var allowedExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save validates the header against the extension/media-type allow-list and
// the size ceiling, then writes the content under a generated unique name.
// It returns the stored path and byte size.
func (s *Store) Save(fh *multipart.FileHeader) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	want, ok := allowedExts[ext]
	if !ok {
		return "", 0, ErrBadType
	}
	if ct := fh.Header.Get("Content-Type"); ct != want {
		return "", 0, ErrBadType
	}
	if fh.Size > MaxBytes {
		return "", 0, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", 0, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(s.Dir, uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer dst.Close()

	// The declared size is re-checked on the wire.
	n, err := io.Copy(dst, io.LimitReader(src, MaxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	if n > MaxBytes {
		os.Remove(path)
		return "", 0, ErrTooLarge
	}
	return path, n, nil
}

// Remove deletes a previously stored file. Callers treat failure as
// best-effort and log it.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	return os.Remove(path)
}
