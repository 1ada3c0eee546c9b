package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alfredoptarigan/resume-intake/internal/logger"
)

const cleanupQueueSize = 100

// CleanupWorker retries blob deletes that failed during upload compensation.
type CleanupWorker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(key string)
}

type CleanupOptions struct {
	Concurrency   int
	MaxAttempts   int
	RetryDelay    time.Duration
	DeleteTimeout time.Duration
}

type cleanupWorker struct {
	blobs    BlobStore
	opts     CleanupOptions
	queue    chan string
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	log      zerolog.Logger

	// mu guards stopped and sends on queue, so no key lands after Stop closes it.
	mu      sync.Mutex
	stopped bool
}

func NewCleanupWorker(blobs BlobStore, opts CleanupOptions) CleanupWorker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.DeleteTimeout <= 0 {
		opts.DeleteTimeout = defaultCompensationTimeout
	}

	return &cleanupWorker{
		blobs:    blobs,
		opts:     opts,
		queue:    make(chan string, cleanupQueueSize),
		stopChan: make(chan struct{}),
		log:      logger.Component("cleanup_worker"),
	}
}

// Start implements CleanupWorker.
func (w *cleanupWorker) Start(ctx context.Context) {
	w.log.Info().Int("concurrency", w.opts.Concurrency).Msg("starting cleanup worker")

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processKeys(ctx, i+1)
	}
}

// Stop implements CleanupWorker. Running workers get one pass over the keys still queued;
// anything left after that is logged as orphaned.
func (w *cleanupWorker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info().Msg("stopping cleanup worker")

		w.mu.Lock()
		w.stopped = true
		close(w.queue)
		w.mu.Unlock()

		close(w.stopChan)
		w.wg.Wait()

		for key := range w.queue {
			w.log.Error().Str("blob_key", key).Msg("cleanup worker stopped, blob orphaned")
		}
		w.log.Info().Msg("cleanup worker stopped")
	})
}

// Enqueue implements CleanupWorker. It never blocks the request path.
func (w *cleanupWorker) Enqueue(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		w.log.Error().Str("blob_key", key).Msg("cleanup worker stopped, blob orphaned")
		return
	}

	select {
	case w.queue <- key:
		w.log.Info().Str("blob_key", key).Msg("orphan blob queued")
	default:
		w.log.Error().Str("blob_key", key).Msg("cleanup queue full, blob orphaned")
	}
}

func (w *cleanupWorker) processKeys(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-w.queue:
			if !ok {
				return
			}
			w.deleteWithRetry(ctx, workerID, key)
		}
	}
}

func (w *cleanupWorker) deleteWithRetry(ctx context.Context, workerID int, key string) {
	var lastErr error

	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		deleteCtx, cancel := context.WithTimeout(context.Background(), w.opts.DeleteTimeout)
		err := w.blobs.Delete(deleteCtx, key)
		cancel()
		if err == nil {
			w.log.Info().Int("worker", workerID).Str("blob_key", key).Int("attempt", attempt).Msg("orphan blob deleted")
			return
		}
		lastErr = err

		if attempt == w.opts.MaxAttempts {
			break
		}

		timer := time.NewTimer(w.opts.RetryDelay)
		select {
		case <-w.stopChan:
			timer.Stop()
			w.log.Error().Err(lastErr).Str("blob_key", key).Msg("cleanup worker stopped, blob orphaned")
			return
		case <-ctx.Done():
			timer.Stop()
			w.log.Error().Err(lastErr).Str("blob_key", key).Msg("cleanup cancelled, blob orphaned")
			return
		case <-timer.C:
		}
	}

	w.log.Error().
		Err(lastErr).
		Int("worker", workerID).
		Str("blob_key", key).
		Int("attempts", w.opts.MaxAttempts).
		Msg("giving up on orphan blob")
}
