// Package upload is the file-storage collaborator for record attachments.
// It is feature-flagged: when no store is configured the upload endpoints are
// disabled but URL-based attachments keep working, and no core operation is
// ever blocked by its absence.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"roadward.org/internal/ids"
)

// ErrDisabled indicates no storage backend is configured.
var ErrDisabled = errors.New("upload: storage is not configured")

// File describes one stored payload.
type File struct {
	// URI is the stable reference recorded into attachments.
	URI string `json:"url"`
	// Filename is the name the client submitted.
	Filename string `json:"filename"`
}

// Store persists binary payloads and hands back a stable URI. The core never
// retries a failed save; the error is surfaced to the caller as-is.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (File, error)
}

// Service guards a Store behind the feature flag.
type Service struct {
	store Store
}

// NewService wraps the given store; a nil store yields a disabled service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Enabled reports whether uploads are available.
func (s *Service) Enabled() bool {
	return s != nil && s.store != nil
}

// Save stores the payload and returns its URI, or ErrDisabled when no
// backend is configured.
func (s *Service) Save(ctx context.Context, filename string, r io.Reader) (File, error) {
	if !s.Enabled() {
		return File{}, ErrDisabled
	}
	if strings.TrimSpace(filename) == "" {
		return File{}, errors.New("upload: filename is required")
	}
	return s.store.Save(ctx, filename, r)
}

// DiskStore writes payloads to a local directory and serves them under a URL
// prefix. Stored names are fresh ULIDs so client-supplied names never touch
// the filesystem.
type DiskStore struct {
	dir       string
	urlPrefix string
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates the directory if needed and returns a disk store whose
// URIs are urlPrefix + "/" + generated name.
func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("upload: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create directory: %w", err)
	}
	return &DiskStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the backing directory, used for static serving.
func (d *DiskStore) Dir() string { return d.dir }

func (d *DiskStore) Save(_ context.Context, filename string, r io.Reader) (File, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := ids.New() + ext
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return File{}, fmt.Errorf("upload: open file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return File{}, fmt.Errorf("upload: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return File{}, fmt.Errorf("upload: close file: %w", err)
	}
	return File{URI: d.urlPrefix + "/" + name, Filename: filename}, nil
}
