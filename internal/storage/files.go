// Package storage persists test-score attachments and hands back opaque
// references. The engine stores only the reference, never the bytes.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type FileStore interface {
	Save(ctx context.Context, testScoreID, fileName string, r io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}

// LocalStore writes attachments under a base directory, one subdirectory per
// test score.
type LocalStore struct {
	baseDir string
	logger  zerolog.Logger
}

func NewLocalStore(baseDir string, logger zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, logger: logger}, nil
}

func (s *LocalStore) Save(ctx context.Context, testScoreID, fileName string, r io.Reader) (string, error) {
	dir := filepath.Join(s.baseDir, testScoreID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachment directory: %w", err)
	}

	// Base strips any path components a client smuggled into the name.
	ref := filepath.Join(dir, filepath.Base(fileName))
	f, err := os.Create(ref)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	s.logger.Debug().Str("ref", ref).Str("test_score_id", testScoreID).Msg("attachment stored")
	return ref, nil
}

// Remove deletes a previously stored attachment by its reference.
func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	if err := os.Remove(ref); err != nil {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}
	s.logger.Debug().Str("ref", ref).Msg("attachment removed")
	return nil
}

var _ FileStore = (*LocalStore)(nil)
