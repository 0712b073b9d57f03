package grid

import (
	"errors"
	"sync"

	"github.com/san-kum/mdsim/internal/dynamo"
)

type rangeFunc func(worker, lo, hi int) error

type task struct {
	worker int
	lo, hi int
	fn     rangeFunc
	err    *error
}

// pool is a fixed set of background workers parked on their task channels
// between passes. The calling goroutine acts as the last worker.
type pool struct {
	tasks  []chan task
	wg     sync.WaitGroup
	closed bool
}

func newPool(threads int) *pool {
	p := &pool{tasks: make([]chan task, threads-1)}
	for i := range p.tasks {
		ch := make(chan task)
		p.tasks[i] = ch
		go func() {
			for t := range ch {
				*t.err = t.fn(t.worker, t.lo, t.hi)
				p.wg.Done()
			}
		}()
	}
	return p
}

func (p *pool) size() int {
	return len(p.tasks) + 1
}

// run splits [0, n) into size() contiguous ranges and blocks until all of
// them have been processed.
func (p *pool) run(n int, fn rangeFunc) error {
	if p.closed {
		return dynamo.ErrPoolClosed
	}
	parts := p.size()
	errs := make([]error, parts)

	p.wg.Add(len(p.tasks))
	for w, ch := range p.tasks {
		ch <- task{
			worker: w,
			lo:     w * n / parts,
			hi:     (w + 1) * n / parts,
			fn:     fn,
			err:    &errs[w],
		}
	}

	last := parts - 1
	errs[last] = fn(last, last*n/parts, n)
	p.wg.Wait()

	return errors.Join(errs...)
}

func (p *pool) close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, ch := range p.tasks {
		close(ch)
	}
}
