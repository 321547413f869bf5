// Package localfs implements the supporting-document blob store on the local
// filesystem. References are generated file names; callers treat them as opaque.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/claims-backend/internal/config"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Store saves documents under a single root directory.
type Store struct {
	cfg config.StorageConfig
	log *slog.Logger
}

// New creates the root directory if needed and returns a Store.
func New(cfg config.StorageConfig, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.RootDir, 0o750); err != nil {
		return nil, fmt.Errorf("localfs: create root %s: %w", cfg.RootDir, err)
	}
	return &Store{
		cfg: cfg,
		log: log.With("adapter", "localfs"),
	}, nil
}

// Save writes r to a new file named after a random UUID plus the extension
// of filename. A disallowed extension or an oversize body is a validation
// error; nothing is left on disk in either case.
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !s.cfg.IsExtensionAllowed(ext) {
		return "", domain.NewValidationError("supporting_document", fmt.Sprintf("file type %q is not allowed", ext))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.New().String() + ext
	path := filepath.Join(s.cfg.RootDir, ref)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", domain.StorageError("save document", err)
	}

	// Read one byte past the limit to detect oversize bodies.
	n, copyErr := io.Copy(f, io.LimitReader(r, s.cfg.MaxDocumentBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", domain.StorageError("save document", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", domain.StorageError("save document", closeErr)
	case n > s.cfg.MaxDocumentBytes:
		_ = os.Remove(path)
		return "", domain.NewValidationError("supporting_document", fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxDocumentBytes))
	case n == 0:
		_ = os.Remove(path)
		return "", domain.NewValidationError("supporting_document", "file is empty")
	}

	s.log.DebugContext(ctx, "document saved", slog.String("ref", ref), slog.Int64("bytes", n))
	return ref, nil
}

// Open returns a reader for ref. The caller must close it.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("document %s: %w", ref, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.StorageError("open document", err)
	}
	return f, nil
}

// Delete removes ref. Deleting a missing document succeeds so that a retried
// claim deletion is not blocked by an earlier partial cleanup.
func (s *Store) Delete(ctx context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.StorageError("delete document", err)
	}

	s.log.DebugContext(ctx, "document deleted", slog.String("ref", ref))
	return nil
}

// resolve maps ref to a path inside root, rejecting anything that is not a
// bare file name.
func (s *Store) resolve(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || ref == "." || ref == ".." {
		return "", domain.NewValidationError("supporting_document", "invalid document reference")
	}
	return filepath.Join(s.cfg.RootDir, ref), nil
}

// Ping reports whether the root directory still exists and accepts writes.
// The scratch file is removed before returning.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.cfg.RootDir, ".ping-*")
	if err != nil {
		return domain.StorageError("ping document root", err)
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return domain.StorageError("ping document root", err)
	}
	return nil
}
