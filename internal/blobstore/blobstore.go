// Package blobstore stores uploaded listing images and serves them back by URL.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// Store writes image blobs and returns the public URL they are served from
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// DiskStore keeps blobs as flat files under a root directory.
// Saved names are randomized, the original name only contributes its extension.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root string, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}

	return &DiskStore{root: root, baseURL: baseURL}, nil
}

func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(name))

	f, err := os.Create(filepath.Join(s.root, stored))
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close() // nolint:errcheck

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	publicURL, err := url.JoinPath(s.baseURL, stored)
	if err != nil {
		return "", fmt.Errorf("failed to build blob url: %w", err)
	}

	return publicURL, nil
}

func (s *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Names are generated server side, but reject anything path-like anyway
	if name != filepath.Base(name) {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}

	return f, nil
}

func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if name != filepath.Base(name) {
		return ErrNotFound
	}

	err := os.Remove(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}

	return err
}
