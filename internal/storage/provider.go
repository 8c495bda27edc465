// Package storage is the vault file layer: one Markdown file per note.
package storage

import (
	"context"

	"github.com/starford/echonotes/internal/models"
)

// Provider is the interface for vault file operations. Names are relative to
// the vault root.
type Provider interface {
	// List returns metadata for every .md file in the vault.
	List(ctx context.Context) ([]models.FileMetadata, error)
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the file atomically. A cancelled context aborts the
	// write before the file becomes visible.
	Write(ctx context.Context, name string, content []byte) error
	// Delete removes the file. A missing file is apperr.ErrNotFound.
	Delete(ctx context.Context, name string) error
}
