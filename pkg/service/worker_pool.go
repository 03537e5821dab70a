package service

import (
	"runtime"
	"sync"
)

// WorkerPool runs submitted workflow executions on a bounded set of workers,
// decoupling triggers (HTTP handlers, scheduler ticks) from the actual run.
type WorkerPool struct {
	runs     chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
	logger   Logger
}

func NewWorkerPool(workers int, logger Logger) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	wp := &WorkerPool{
		// generous buffer so triggers return immediately under bursts
		runs:   make(chan func(), workers*16),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for run := range wp.runs {
		run()
	}
}

// Submit queues a run. It only blocks when the queue is saturated, which
// bounds memory without dropping accepted triggers.
func (wp *WorkerPool) Submit(run func()) {
	wp.runs <- run
}

// Stop drains queued runs and waits for in-flight ones to finish.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.runs)
		wp.wg.Wait()
		wp.logger.Infof("Worker pool stopped")
	})
}
