package utils

import (
	"context"
	"runtime"
	"sync"
)

// MaxWorkers caps the pool size regardless of GOMAXPROCS.
const MaxWorkers = 32

// WorkerPool fans tasks out to a bounded set of goroutines. Handler errors
// are collected inside the pool: the first one is reported by Stop, and the
// queue always drains so every submitted task gets a chance to run.
type WorkerPool[T any] struct {
	workers int
	ctx     context.Context
	wg      sync.WaitGroup
	tasks   chan T
	handler func(T) error

	mu       sync.Mutex
	firstErr error
}

func NewWorkerPool[T any](ctx context.Context, workers int, handler func(T) error) *WorkerPool[T] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return &WorkerPool[T]{
		workers: workers,
		ctx:     ctx,
		tasks:   make(chan T, workers*4),
		handler: handler,
	}
}

func (p *WorkerPool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *WorkerPool[T]) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			if err := p.handler(task); err != nil {
				p.mu.Lock()
				if p.firstErr == nil {
					p.firstErr = err
				}
				p.mu.Unlock()
			}
		}
	}
}

func (p *WorkerPool[T]) Submit(task T) {
	select {
	case <-p.ctx.Done():
	case p.tasks <- task:
	}
}

// Stop closes the queue, waits for the workers, and returns the first
// handler error.
func (p *WorkerPool[T]) Stop() error {
	close(p.tasks)
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firstErr
}
