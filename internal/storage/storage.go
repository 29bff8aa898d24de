// Package storage persists listing proof documents.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"marketBack/internal/config"
	"marketBack/internal/models"
)

// ProofStore saves uploaded proof files and removes them again. Paths are
// relative and use forward slashes, e.g. proofs/12/<uuid>.pdf.
type ProofStore interface {
	SaveProof(ctx context.Context, listingID int, originalName string, r io.Reader) (models.ListingProof, error)
	Delete(ctx context.Context, relPath string) error
}

var allowedProofTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// New returns the store selected by cfg.Driver.
func New(cfg config.StorageConfig) (ProofStore, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalStore(cfg.UploadsDir, cfg.MaxProofSize), nil
	case "s3":
		return NewS3Store(cfg.S3, cfg.MaxProofSize)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// proofFile is an upload that passed the size and type checks.
type proofFile struct {
	data     []byte
	mimeType string
	relPath  string
}

// readProof buffers at most maxSize bytes and detects the content type from
// the file contents; the client supplied name and header are ignored.
func readProof(listingID int, r io.Reader, maxSize int64) (proofFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return proofFile{}, fmt.Errorf("read proof: %w", err)
	}
	if int64(len(data)) > maxSize {
		return proofFile{}, models.ErrProofTooLarge
	}

	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	ext, ok := allowedProofTypes[mimeType]
	if !ok || len(data) == 0 {
		return proofFile{}, models.ErrProofTypeNotAllowed
	}

	return proofFile{
		data:     data,
		mimeType: mimeType,
		relPath:  path.Join("proofs", strconv.Itoa(listingID), uuid.New().String()+ext),
	}, nil
}

func (f proofFile) proof(listingID int, originalName string) models.ListingProof {
	return models.ListingProof{
		ListingID:    listingID,
		FilePath:     f.relPath,
		OriginalName: path.Base(strings.ReplaceAll(originalName, "\\", "/")),
		MimeType:     f.mimeType,
		SizeBytes:    int64(len(f.data)),
	}
}

func (f proofFile) reader() io.ReadSeeker {
	return bytes.NewReader(f.data)
}

// validRelPath rejects anything outside the proofs tree.
func validRelPath(relPath string) bool {
	clean := path.Clean(relPath)
	return clean == relPath && strings.HasPrefix(clean, "proofs/") && !strings.Contains(clean, "..")
}
