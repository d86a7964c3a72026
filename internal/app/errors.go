package service

import (
	"errors"

	"github.com/okian/formpost/internal/adapters/repository"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("submission queue is full")
	ErrGenerateID   = errors.New("generate submission id failed")
	ErrNotFound     = repository.ErrNotFound
)
