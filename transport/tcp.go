package transport

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// TCP is the acceptor. It owns the listening socket and hands accepted connections
// over to a callback, one at a time.
type TCP struct {
	log  zerolog.Logger
	l    net.Listener
	stop *atomic.Bool
	done chan struct{}
}

func NewTCP(log zerolog.Logger) *TCP {
	return &TCP{
		log:  log,
		stop: new(atomic.Bool),
		done: make(chan struct{}),
	}
}

// Bind opens the listening socket. The kernel queues up to backlog handshaken connections
// while the acceptor is blocked.
func (t *TCP) Bind(port uint16, backlog int) (err error) {
	t.l, err = listen(port, backlog)
	return err
}

// Addr returns the bound address. It's especially useful when binding to the port 0.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen runs the accept loop until Stop is called. The callback may block, which stops
// accepting new connections, so they pile up in the kernel backlog. If the callback
// refuses a connection, it's closed immediately.
//
// Transient accept errors (e.g. running out of file descriptors) are retried with a
// growing delay. Listen returns nil once stopped.
func (t *TCP) Listen(cb func(conn net.Conn) bool) error {
	defer close(t.done)

	var backoff time.Duration

	for {
		conn, err := t.l.Accept()
		if err != nil {
			if t.stop.Load() {
				return nil
			}

			if errors.Is(err, net.ErrClosed) {
				return err
			}

			backoff = max(minAcceptBackoff, min(backoff*2, maxAcceptBackoff))
			t.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")
			time.Sleep(backoff)

			continue
		}

		backoff = 0

		if !cb(conn) {
			_ = conn.Close()
		}
	}
}

// Stop interrupts the accept loop. Connections remaining in the backlog are reset by
// the kernel once the socket is closed.
func (t *TCP) Stop() {
	if t.stop.Swap(true) {
		return
	}

	if t.l != nil {
		_ = t.l.Close()
	}
}

// Wait blocks until Listen returns.
func (t *TCP) Wait() {
	<-t.done
}
