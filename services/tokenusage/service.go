// Package tokenusage implements asynchronous token-usage accounting: usage
// records are handed off to background workers and persisted best-effort, so
// the request path that produced them never waits on, or fails because of,
// accounting.
package tokenusage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/repositories"
	"go.uber.org/zap"
)

// Recorder persists usage records through a buffered worker pool.
type Recorder struct {
	repo        repositories.TokenUsageRepository
	logger      *observability.Logger
	eventChan   chan *models.TokenUsage
	workerCount int
	wg          sync.WaitGroup
	mu          sync.Mutex
	started     bool
}

// Config holds configuration for the Recorder
type Config struct {
	BufferSize  int // Size of the record buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  4096,
		WorkerCount: 3,
	}
}

// NewRecorder creates a Recorder instance
func NewRecorder(repo repositories.TokenUsageRepository, logger *observability.Logger, cfg Config) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig().WorkerCount
	}
	return &Recorder{
		repo:        repo,
		logger:      logger,
		eventChan:   make(chan *models.TokenUsage, cfg.BufferSize),
		workerCount: cfg.WorkerCount,
	}
}

// Start starts the background workers
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("usage recorder already started")
	}

	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	r.logger.Info(context.Background(), "started usage recorder",
		zap.Int("worker_count", r.workerCount),
		zap.Int("buffer_size", cap(r.eventChan)))

	return nil
}

// Stop drains pending records and stops the workers, waiting at most timeout.
func (r *Recorder) Stop(timeout time.Duration) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return fmt.Errorf("usage recorder not started")
	}
	r.started = false
	// Closing under the same lock Record sends under rules out a
	// send-on-closed-channel panic from a racing Record.
	close(r.eventChan)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info(context.Background(), "usage recorder stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("usage recorder stop timeout after %v", timeout)
	}
}

// Record queues one usage record without blocking. A full buffer drops the
// record with a warning: accounting is best effort by design.
func (r *Recorder) Record(ctx context.Context, companyID uuid.UUID, userID *uuid.UUID, model string, promptTokens, completionTokens int) {
	usage := models.NewTokenUsage(companyID, userID,
		observability.RequestIDFrom(ctx), model, promptTokens, completionTokens)

	// The send happens under the same lock Stop closes the channel under,
	// so a Record racing Stop can never hit a closed channel. The send is
	// non-blocking, so holding the lock costs nothing.
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}

	select {
	case r.eventChan <- usage:
	default:
		r.logger.Warn(ctx, "usage record buffer full, dropping record",
			zap.String("company_id", companyID.String()),
			zap.String("model", model))
	}
}

// worker persists queued records until the channel closes. Failures are
// logged, never propagated back to any request.
func (r *Recorder) worker(id int) {
	defer r.wg.Done()

	for usage := range r.eventChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.repo.Insert(ctx, usage); err != nil {
			r.logger.Warn(ctx, "failed to persist usage record",
				zap.Int("worker", id),
				zap.String("company_id", usage.CompanyID.String()),
				zap.Error(err))
		}
		cancel()
	}
}

// SumForCompany returns a company's total token consumption.
func (r *Recorder) SumForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return r.repo.SumByCompany(ctx, companyID)
}

// ListForCompany returns a company's usage records with pagination.
func (r *Recorder) ListForCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.TokenUsage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return r.repo.ListByCompany(ctx, companyID, limit, offset)
}
