package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("submission not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrStore        = errors.New("store operation failed")
)
