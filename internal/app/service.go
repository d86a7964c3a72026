// Package service accepts posted submissions, stamps them and hands them to
// the worker pool that stores and publishes them.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/formpost/internal/adapters/broker"
	eventqueue "github.com/okian/formpost/internal/adapters/mq/queue"
	workerpool "github.com/okian/formpost/internal/adapters/mq/worker"
	"github.com/okian/formpost/internal/adapters/repository"
	"github.com/okian/formpost/internal/domain/model"
	"github.com/okian/formpost/pkg/logger"
	"github.com/okian/formpost/pkg/metrics"
)

const (
	defaultQueueSize = 10_000
	stopTimeout      = 30 * time.Second
)

// Rejection reasons recorded on the rejected-submissions counter.
const (
	reasonBackpressure = "backpressure"
	reasonStopped      = "stopped"
	reasonID           = "id"
)

// IDGenerator returns a new unique submission id.
type IDGenerator func() (string, error)

// Clock returns the current time.
type Clock func() time.Time

// newTimeUUID returns a time-based (version 1) UUID.
func newTimeUUID() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Service implements the receiver's API dependencies.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	publisher  broker.Publisher
	queue      eventqueue.Queue
	workerPool *workerpool.Pool

	workerCount int
	queueSize   int
	newID       IDGenerator
	now         Clock

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of buffered submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithStore sets where submissions are persisted. Defaults to a MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPublisher sets where stored submissions are announced.
func WithPublisher(p broker.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithIDGenerator overrides the time-based UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now Clock) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		newID:       newTimeUUID,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.publisher == nil {
		s.publisher = broker.NopPublisher{}
	}
	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.store,
		workerpool.WithPublisher(s.publisher),
	)
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "submission service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("store", fmt.Sprintf("%T", s.store)),
		logger.String("publisher", fmt.Sprintf("%T", s.publisher)),
	)
	return nil
}

// Stop drains buffered submissions, then closes the publisher and store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping submission service...")

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	var errs []error
	if err := s.workerPool.Shutdown(stopCtx); err != nil {
		errs = append(errs, fmt.Errorf("drain workers: %w", err))
	}
	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "submission service stopped")
	return errors.Join(errs...)
}

// Accept stamps rec with a new id and timestamps and queues it for
// persistence. The returned submission is not yet stored.
func (s *Service) Accept(ctx context.Context, rec model.SubmissionRecord) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		metrics.RecordSubmissionRejected(reasonStopped)
		return model.Submission{}, ErrNotStarted
	}

	id, err := s.newID()
	if err != nil {
		metrics.RecordSubmissionRejected(reasonID)
		return model.Submission{}, fmt.Errorf("%w: %w", ErrGenerateID, err)
	}
	sub := model.NewSubmission(id, rec, s.now())

	if err := s.queue.Enqueue(ctx, sub); err != nil {
		if errors.Is(err, eventqueue.ErrFull) {
			metrics.RecordSubmissionRejected(reasonBackpressure)
			return model.Submission{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		metrics.RecordSubmissionRejected(reasonStopped)
		return model.Submission{}, fmt.Errorf("enqueue submission: %w", err)
	}

	metrics.RecordSubmissionReceived()
	s.logger.Debug(ctx, "submission accepted", logger.String("id", sub.ID))
	return sub, nil
}

// Get returns a stored submission by id.
func (s *Service) Get(ctx context.Context, id string) (model.Submission, error) {
	return s.store.Get(ctx, id)
}

// List returns up to limit stored submissions, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]model.Submission, error) {
	return s.store.List(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["stored"] = n
	} else if s.logger != nil {
		s.logger.Warn(ctx, "failed to count submissions", logger.Error(err))
	}
	return stats
}
