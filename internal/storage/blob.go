// Package storage keeps uploaded files on local disk under generated names.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yukikurage/site-services-api/internal/utils"
)

var (
	ErrTooLarge    = errors.New("file exceeds the upload limit")
	ErrInvalidName = errors.New("invalid blob name")
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// Blob describes a stored file.
type Blob struct {
	Name string
	Size int64
	Mime string
}

// BlobStore writes uploads into one directory.
type BlobStore struct {
	dir      string
	maxBytes int64
}

func NewBlobStore(dir string, maxBytes int64) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &BlobStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir is the directory served under /uploads.
func (b *BlobStore) Dir() string {
	return b.dir
}

// MaxBytes is the per-file limit.
func (b *BlobStore) MaxBytes() int64 {
	return b.maxBytes
}

// Save copies r to a new file named after now and a random suffix, keeping
// the lower-cased extension of originalName. The MIME type is sniffed from content.
func (b *BlobStore) Save(r io.Reader, originalName string, now time.Time) (*Blob, error) {
	name, err := utils.GenerateBlobName(now, safeExt(originalName))
	if err != nil {
		return nil, err
	}
	path := filepath.Join(b.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob: %w", err)
	}

	size, err := io.Copy(f, io.LimitReader(r, b.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && size > b.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to detect blob type: %w", err)
	}

	return &Blob{Name: name, Size: size, Mime: mime.String()}, nil
}

// Remove deletes a stored blob. Missing files are ignored.
func (b *BlobStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return ErrInvalidName
	}
	if err := os.Remove(filepath.Join(b.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func safeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
