package worker

import (
	"context"
	"sync"
)

// Job is one unit of work
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produced
type Result interface {
	GetError() error
}

type indexed struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of goroutines. Jobs must not touch the
// shared browser session; the pool is for offline work only.
type Pool struct {
	workers   int
	jobs      chan indexedJob
	results   chan indexed
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	submitted int
	collected map[int]Result
	done      chan struct{}
	closeOnce sync.Once
}

type indexedJob struct {
	index int
	job   Job
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops the workers
// after their current job.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers: workers,
		jobs:    make(chan indexedJob, workers*2),
		results: make(chan indexed, workers*2),
		ctx:       ctx,
		cancel:    cancel,
		collected: make(map[int]Result),
		done:      make(chan struct{}),
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) collect() {
	defer close(p.done)
	for r := range p.results {
		p.collected[r.index] = r.result
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			r := j.job.Execute(p.ctx)
			select {
			case p.results <- indexed{index: j.index, result: r}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It reports false once the pool is cancelled.
// Submit and Wait must be called from the same goroutine.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- indexedJob{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait closes the queue and returns the results in submission order.
// Jobs dropped by cancellation leave a nil slot.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	p.closeResults()
	<-p.done
	p.cancel()

	results := make([]Result, p.submitted)
	for i, r := range p.collected {
		results[i] = r
	}
	return results
}

// Shutdown cancels outstanding work and waits for the workers to exit
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
