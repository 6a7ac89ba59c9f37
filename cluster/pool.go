package cluster

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when submitting to a closed WorkerPool.
var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool runs submitted tasks on a fixed set of goroutines. It is
// shared by every query of an engine.
type WorkerPool struct {
	size  int
	tasks chan func()
	wg    sync.WaitGroup

	// mu guards closed and the close of tasks against concurrent sends.
	mu     sync.RWMutex
	closed bool

	busy atomic.Int64
}

// NewWorkerPool starts a pool of size goroutines. size <= 0 selects
// min(GOMAXPROCS, MaxWorkers).
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = min(runtime.GOMAXPROCS(0), MaxWorkers)
	}

	wp := &WorkerPool{
		size:  size,
		tasks: make(chan func(), size),
	}

	wp.wg.Add(size)
	for range size {
		go wp.run()
	}
	return wp
}

func (wp *WorkerPool) run() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		wp.busy.Add(1)
		task()
		wp.busy.Add(-1)
	}
}

// Size returns the number of worker goroutines.
func (wp *WorkerPool) Size() int { return wp.size }

// Busy returns the number of tasks currently running.
func (wp *WorkerPool) Busy() int { return int(wp.busy.Load()) }

// Submit queues task, blocking while all workers are busy and the queue is
// full. It fails with ErrPoolClosed after Close and with ctx.Err() when ctx
// ends first.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case wp.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for queued tasks to finish and stops the workers. Further
// calls are no-ops.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.tasks)
	wp.mu.Unlock()

	wp.wg.Wait()
}
