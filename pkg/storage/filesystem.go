package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// LocalStorage persists uploaded images on disk under a base directory.
// URLs it returns point back at the API's signed download route, so a dev
// deployment works without an object-store service.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
	signer        *SignedURLSigner
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string, signer *SignedURLSigner) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: publicBaseURL, signer: signer}, nil
}

// Upload copies the reader into the target file and returns a signed
// download URL for it.
func (s *LocalStorage) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.Base(objectName))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}

	token, _, err := s.signer.Generate(objectName)
	if err != nil {
		return "", fmt.Errorf("sign upload url: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s?token=%s", s.publicBaseURL, url.PathEscape(objectName), url.QueryEscape(token)), nil
}

// Open returns a read-only handle for a stored image.
func (s *LocalStorage) Open(objectName string) (*os.File, error) {
	file, err := os.Open(filepath.Join(s.baseDir, filepath.Base(objectName)))
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}
