package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"marketBack/internal/models"
)

type LocalStore struct {
	Root    string
	MaxSize int64
}

func NewLocalStore(root string, maxSize int64) *LocalStore {
	return &LocalStore{Root: root, MaxSize: maxSize}
}

func (s *LocalStore) SaveProof(ctx context.Context, listingID int, originalName string, r io.Reader) (models.ListingProof, error) {
	f, err := readProof(listingID, r, s.MaxSize)
	if err != nil {
		return models.ListingProof{}, err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(f.relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0750); err != nil {
		return models.ListingProof{}, fmt.Errorf("create proof directory: %w", err)
	}
	if err := os.WriteFile(fullPath, f.data, 0640); err != nil {
		return models.ListingProof{}, fmt.Errorf("write proof: %w", err)
	}
	return f.proof(listingID, originalName), nil
}

// Delete removes a stored proof. A file that is already gone is not an error.
func (s *LocalStore) Delete(ctx context.Context, relPath string) error {
	if !validRelPath(relPath) {
		return fmt.Errorf("invalid proof path %q", relPath)
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(relPath)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
