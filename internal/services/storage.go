package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"alfredoptarigan/resume-intake/internal/apperror"
)

// BlobStore holds the original uploaded files.
type BlobStore interface {
	Store(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BlobKey builds "<YYYYMMDD_HHMMSS>_<candidate id>_<sanitised filename>".
func BlobKey(now time.Time, candidateID, filename string) string {
	name := unsafeKeyChars.ReplaceAllString(filepath.Base(filename), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "resume"
	}
	return fmt.Sprintf("%s_%s_%s", now.UTC().Format("20060102_150405"), candidateID, name)
}

type localStorage struct {
	uploadPath string
}

func NewLocalStorage(uploadPath string) (BlobStore, error) {
	s := &localStorage{uploadPath: uploadPath}
	if err := s.ensureUploadDir(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *localStorage) ensureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// Store implements BlobStore.
func (s *localStorage) Store(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperror.BlobStoreUnavailable(err)
	}

	filePath, err := s.filePath(key)
	if err != nil {
		return "", err
	}

	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", apperror.BlobStoreUnavailable(fmt.Errorf("failed to create destination file: %w", err))
	}
	defer dst.Close()

	if _, err := dst.Write(content); err != nil {
		_ = os.Remove(filePath)
		return "", apperror.BlobStoreUnavailable(fmt.Errorf("failed to save file: %w", err))
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// Delete implements BlobStore. Deleting a missing file succeeds.
func (s *localStorage) Delete(ctx context.Context, key string) error {
	filePath, err := s.filePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperror.BlobStoreUnavailable(fmt.Errorf("failed to delete file: %w", err))
	}
	return nil
}

func (s *localStorage) filePath(key string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", apperror.Validationf("invalid blob key: %q", key)
	}
	return filepath.Join(s.uploadPath, key), nil
}
