// Package pool implements a fixed set of workers serving connections. The intake
// is unbuffered: submitting blocks until some worker is idle, which is what makes
// the acceptor stop accepting and lets the kernel backlog absorb the load.
package pool

import (
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Pool struct {
	log    zerolog.Logger
	serve  func(net.Conn)
	size   int
	intake chan net.Conn
	quit   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	mu     sync.Mutex
	active map[net.Conn]struct{}
	busy   atomic.Int32
}

// New creates a pool of the given size. Every connection is passed to serve and closed
// after it returns.
func New(size int, serve func(net.Conn), log zerolog.Logger) *Pool {
	return &Pool{
		log:    log,
		serve:  serve,
		size:   size,
		intake: make(chan net.Conn),
		quit:   make(chan struct{}),
		active: make(map[net.Conn]struct{}, size),
	}
}

// Start spawns the workers.
func (p *Pool) Start() {
	p.wg.Add(p.size)
	for i := range p.size {
		go p.worker(i)
	}
}

// Submit hands the connection over to an idle worker, blocking until there is one.
// It returns false if the pool is closing, in which case the connection is left
// untouched.
func (p *Pool) Submit(conn net.Conn) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case p.intake <- conn:
		return true
	case <-p.quit:
		return false
	}
}

// Close stops workers from picking up new connections. The ones in progress are
// served till the end.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
}

// Wait blocks until all workers exit or the timeout elapses. It reports whether
// the workers exited in time.
func (p *Pool) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Interrupt closes all the connections being served, so blocked reads and writes
// fail and handlers' responses are discarded.
func (p *Pool) Interrupt() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for conn := range p.active {
		_ = conn.Close()
	}
}

// Busy returns the number of workers currently serving a connection.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case conn := <-p.intake:
			p.handle(id, conn)
		}
	}
}

func (p *Pool) handle(id int, conn net.Conn) {
	p.track(conn)
	p.busy.Add(1)

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Int("worker", id).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("worker recovered from panic")
		}

		_ = conn.Close()
		p.busy.Add(-1)
		p.untrack(conn)
	}()

	p.serve(conn)
}

func (p *Pool) track(conn net.Conn) {
	p.mu.Lock()
	p.active[conn] = struct{}{}
	p.mu.Unlock()
}

func (p *Pool) untrack(conn net.Conn) {
	p.mu.Lock()
	delete(p.active, conn)
	p.mu.Unlock()
}
