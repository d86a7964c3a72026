// Package repository keeps received submissions.
package repository

import (
	"context"

	"github.com/okian/formpost/internal/domain/model"
)

// Store provides read/write access to received submissions.
type Store interface {
	// Save persists s. Saving an existing id replaces it.
	Save(ctx context.Context, s model.Submission) error

	// Get returns the submission with id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Submission, error)

	// List returns up to limit submissions, newest first.
	List(ctx context.Context, limit int) ([]model.Submission, error)

	// Count returns the number of stored submissions.
	Count(ctx context.Context) (int, error)
}
