package queue

import (
	"sync"

	"github.com/imyashkale/helmwizard/internal/logger"
)

// TokenCheckJob asks a worker to re-validate one stored connection
type TokenCheckJob struct {
	ConnectionID string
	UserID       string
}

// JobQueue manages the job queue with a channel-based system
type JobQueue struct {
	jobs chan *TokenCheckJob
	done chan struct{}
	mu   sync.RWMutex
	once sync.Once
}

// NewJobQueue creates a new job queue with the specified buffer size
func NewJobQueue(bufferSize int) *JobQueue {
	return &JobQueue{
		jobs: make(chan *TokenCheckJob, bufferSize),
		done: make(chan struct{}),
	}
}

// TryEnqueue adds a job without blocking and reports ErrQueueFull when the buffer is full
func (jq *JobQueue) TryEnqueue(job *TokenCheckJob) error {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	select {
	case <-jq.done:
		return ErrQueueClosed
	default:
	}

	select {
	case jq.jobs <- job:
		logger.WithFields(map[string]interface{}{
			"connection_id": job.ConnectionID,
			"user_id":       job.UserID,
		}).Debug("Token check job enqueued")
		return nil
	default:
		return ErrQueueFull
	}
}

// Jobs returns the underlying channel for job consumption
func (jq *JobQueue) Jobs() <-chan *TokenCheckJob {
	return jq.jobs
}

// Close closes the queue. Buffered jobs are still delivered to workers.
func (jq *JobQueue) Close() {
	jq.once.Do(func() {
		close(jq.done)

		// wait for in-flight enqueues before closing the channel they send on
		jq.mu.Lock()
		defer jq.mu.Unlock()
		close(jq.jobs)
	})
}

// WorkerPool manages multiple workers processing jobs until the queue is closed
type WorkerPool struct {
	queue   *JobQueue
	workers int
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(queue *JobQueue, numWorkers int) *WorkerPool {
	return &WorkerPool{
		queue:   queue,
		workers: numWorkers,
	}
}

// Start starts all workers
func (wp *WorkerPool) Start(handler func(*TokenCheckJob) error) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(handler)
	}
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(handler func(*TokenCheckJob) error) {
	defer wp.wg.Done()

	for job := range wp.queue.Jobs() {
		if job == nil {
			continue
		}

		if err := handler(job); err != nil {
			logger.WithFields(map[string]interface{}{
				"connection_id": job.ConnectionID,
				"error":         err.Error(),
			}).Error("Worker failed to process token check job")
		} else {
			logger.WithField("connection_id", job.ConnectionID).Debug("Worker completed token check job")
		}
	}
	logger.Debug("Worker exiting: jobs channel closed")
}

// Wait waits for all workers to finish draining a closed queue
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}
