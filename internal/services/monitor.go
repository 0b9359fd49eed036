package services

import (
	"context"
	"sync"
	"time"

	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/queue"
	"github.com/imyashkale/helmwizard/internal/repository"
)

// TokenMonitor periodically re-validates every stored token so expired ones
// can be flagged in the connection list
type TokenMonitor struct {
	repo     repository.ConnectionRepository
	service  *ConnectionService
	queue    *queue.JobQueue
	pool     *queue.WorkerPool
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTokenMonitor creates a monitor with the given number of re-validation workers
func NewTokenMonitor(repo repository.ConnectionRepository, service *ConnectionService, interval time.Duration, workers int) *TokenMonitor {
	q := queue.NewJobQueue(workers * 10)
	return &TokenMonitor{
		repo:     repo,
		service:  service,
		queue:    q,
		pool:     queue.NewWorkerPool(q, workers),
		interval: interval,
	}
}

// Start launches the workers and the ticker. A zero interval disables the monitor.
func (m *TokenMonitor) Start(ctx context.Context) {
	if m.interval <= 0 {
		logger.Info("Token monitor disabled")
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)

	m.pool.Start(func(job *queue.TokenCheckJob) error {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return m.service.Revalidate(jobCtx, job.ConnectionID)
	})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.WithFields(map[string]interface{}{
		"interval": m.interval.String(),
	}).Info("Token monitor started")
}

// Sweep enqueues a check for every stored connection and returns how many were queued
func (m *TokenMonitor) Sweep(ctx context.Context) int {
	conns, err := m.repo.ListAllConnections(ctx)
	if err != nil {
		logger.WithError(err).Error("Token monitor failed to list connections")
		return 0
	}

	queued := 0
	for _, c := range conns {
		err := m.queue.TryEnqueue(&queue.TokenCheckJob{ConnectionID: c.Id, UserID: c.UserId})
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"connection_id": c.Id,
				"error":         err.Error(),
			}).Warn("Token check not queued")
			continue
		}
		queued++
	}

	logger.WithFields(map[string]interface{}{
		"connections": len(conns),
		"queued":      queued,
	}).Info("Token monitor sweep")
	return queued
}

// Stop stops the ticker, lets workers finish queued checks and waits for them
func (m *TokenMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.queue.Close()
	m.pool.Wait()
	logger.Info("Token monitor stopped")
}
