// Package pool provides a fixed-size worker pool with an unbounded job
// queue. Submitting never blocks the caller; jobs wait in the queue until
// a worker is free. Shutdown drains the queue before releasing workers.
package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Job is a unit of work executed by one worker.
type Job func()

// ErrPoolClosed is returned by Submit after Shutdown has begun.
var ErrPoolClosed = errors.New("pool: closed")

// Pool dispatches jobs to a fixed set of workers.
type Pool struct {
	size int
	in   chan Job
	out  chan Job
	log  zerolog.Logger

	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New starts size workers. size must be at least 1.
func New(size int, log zerolog.Logger) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool: size must be at least 1, got %d", size)
	}
	p := &Pool{
		size: size,
		in:   make(chan Job),
		out:  make(chan Job),
		log:  log,
	}
	go p.pump()
	for i := 0; i < size; i++ {
		id := i
		p.wg.Add(1)
		go p.worker(id)
	}
	p.log.Debug().Int("workers", size).Msg("worker pool started")
	return p, nil
}

// Size reports the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit queues a job for execution. It never blocks waiting for a
// worker; the queue grows as needed. After Shutdown it returns
// ErrPoolClosed and the job is not run.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.in <- job
	return nil
}

// pump moves jobs from in to out, buffering any backlog in a slice so
// that senders on in are never blocked by slow workers. When in closes
// it flushes the backlog and closes out, which is what releases the
// workers.
func (p *Pool) pump() {
	var backlog []Job
	for {
		var (
			outCh chan Job
			next  Job
		)
		if len(backlog) > 0 {
			outCh = p.out
			next = backlog[0]
		}
		select {
		case job, ok := <-p.in:
			if !ok {
				for _, j := range backlog {
					p.out <- j
				}
				close(p.out)
				return
			}
			backlog = append(backlog, job)
		case outCh <- next:
			backlog = backlog[1:]
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.out {
		p.run(id, job)
	}
	p.log.Debug().Int("worker", id).Msg("worker stopping")
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("job panicked")
		}
	}()
	job()
}

// Shutdown stops accepting jobs, waits for queued jobs to finish, then
// waits for every worker to exit. It is safe to call once; subsequent
// calls return immediately.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.in)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Debug().Msg("worker pool stopped")
}
