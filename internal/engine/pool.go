package engine

import (
	"sync"
	"sync/atomic"
)

// pool is a bounded worker pool modeled on a Java-style
// ThreadPoolExecutor(core, max, queue) with a caller-runs saturation
// policy: coreSize workers run permanently, draining a queueSize-capacity
// task channel; when that channel is full, Submit spins up a transient
// worker up to maxSize total; once even that is exhausted, Submit runs the
// task on the calling goroutine inline rather than blocking or dropping it.
type pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	maxSize     int
	activeCount atomic.Int64 // core + transient workers currently alive

	closeMu sync.Mutex
	closed  bool
}

func newPool(coreSize, maxSize, queueSize int) *pool {
	p := &pool{
		tasks:   make(chan func(), queueSize),
		maxSize: maxSize,
	}
	for i := 0; i < coreSize; i++ {
		p.startWorker(true)
	}
	return p
}

// startWorker launches one worker goroutine. Core workers loop forever
// until the task channel closes; transient workers exit as soon as the
// channel is momentarily empty, shedding burst capacity back down to core.
func (p *pool) startWorker(core bool) {
	p.activeCount.Add(1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.activeCount.Add(-1)
		for {
			if core {
				task, ok := <-p.tasks
				if !ok {
					return
				}
				task()
				continue
			}
			select {
			case task, ok := <-p.tasks:
				if !ok {
					return
				}
				task()
			default:
				return
			}
		}
	}()
}

// Submit enqueues task, growing the pool up to maxSize on a full queue,
// and finally falling back to caller-runs once even that is exhausted.
func (p *pool) Submit(task func()) {
	select {
	case p.tasks <- task:
		return
	default:
	}

	if int(p.activeCount.Load()) < p.maxSize {
		p.startWorker(false)
		select {
		case p.tasks <- task:
			return
		default:
		}
	}

	task()
}

// Shutdown closes the task queue; already-queued and in-flight tasks still
// run. The returned channel closes once every worker has drained.
func (p *pool) Shutdown() <-chan struct{} {
	p.closeMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	return done
}
