// Package restcore is a small HTTP/1.x server with a bounded worker pool, exact-match
// routing and a graceful stop.
//
// Every connection carries exactly one request. Up to Server.Workers connections are
// served simultaneously; the rest wait in the kernel backlog.
package restcore

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/internal/pool"
	"github.com/indigo-web/restcore/internal/protocol/http1"
	"github.com/indigo-web/restcore/router"
	"github.com/indigo-web/restcore/transport"
	"github.com/rs/zerolog"
)

type State int32

const (
	Created State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type hooks struct {
	OnStart, OnStop func()
}

type Server struct {
	cfg    *config.Config
	log    zerolog.Logger
	routes *router.Table
	hooks  hooks
	// mu serializes lifecycle transitions and route registration.
	mu    sync.Mutex
	state atomic.Int32
	tcp   *transport.TCP
	pool  *pool.Pool
}

// New returns a server in the Created state. The config must not be modified afterwards.
func New(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		log:    log,
		routes: router.NewTable(),
	}, nil
}

// NotifyOnStart calls the callback once the server started accepting connections.
func (s *Server) NotifyOnStart(cb func()) *Server {
	s.hooks.OnStart = cb
	return s
}

// NotifyOnStop calls the callback once the server is completely stopped. It's guaranteed
// that no connections are served at that moment.
func (s *Server) NotifyOnStop(cb func()) *Server {
	s.hooks.OnStop = cb
	return s
}

// AddRoute registers the handler at the exact path, replacing the previous one, if any.
// Routes can be registered only before the server is started.
func (s *Server) AddRoute(path string, handler http.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != Created {
		return ErrRoutesFrozen
	}

	s.routes.Add(path, handler)

	return nil
}

// AddRouteFunc is the same as AddRoute, but accepts a plain function.
func (s *Server) AddRouteFunc(path string, fn http.HandlerFunc) error {
	return s.AddRoute(path, fn)
}

// Routes returns registered paths in sorted order. Available in any state.
func (s *Server) Routes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.routes.Paths()
}

func (s *Server) State() State {
	return State(s.state.Load())
}

// Addr returns the address the server listens on, or nil if it isn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tcp == nil {
		return nil
	}

	return s.tcp.Addr()
}

// Start binds the listening socket and spawns the acceptor along with the workers.
// It doesn't block. If binding fails, the server stays in the Created state and can
// be started again.
func (s *Server) Start() error {
	if err := s.start(); err != nil {
		return err
	}

	callIfNotNil(s.hooks.OnStart)

	return nil
}

func (s *Server) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case Running:
		return ErrAlreadyRunning
	case Stopping, Stopped:
		return ErrServerStopped
	}

	tcp := transport.NewTCP(s.log)
	if err := tcp.Bind(s.cfg.Server.Port, s.cfg.Server.Backlog); err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Server.Port, err)
	}

	conn := http1.New(s.cfg, s.routes, s.log)
	s.pool = pool.New(s.cfg.Server.Workers, conn.Serve, s.log)
	s.pool.Start()
	s.tcp = tcp
	s.state.Store(int32(Running))

	go func() {
		if err := tcp.Listen(s.pool.Submit); err != nil {
			s.log.Error().Err(err).Msg("acceptor exited unexpectedly")
		}
	}()

	s.log.Info().
		Stringer("addr", tcp.Addr()).
		Int("workers", s.cfg.Server.Workers).
		Int("backlog", s.cfg.Server.Backlog).
		Msg("server started")

	return nil
}

// Stop closes the listening socket and waits for in-flight requests to complete. If
// they don't manage within Shutdown.DrainTimeout, their connections are closed forcibly.
// Connections waiting in the backlog are dropped. Calling Stop on a server that isn't
// running is a no-op, including the one that is already being stopped by another call.
func (s *Server) Stop() {
	if s.stop() {
		callIfNotNil(s.hooks.OnStop)
	}
}

func (s *Server) stop() (stopped bool) {
	s.mu.Lock()
	if s.State() != Running {
		s.mu.Unlock()
		return false
	}

	s.state.Store(int32(Stopping))
	tcp, workers := s.tcp, s.pool
	// handlers being drained may still call Routes or Addr
	s.mu.Unlock()

	s.log.Info().Msg("stopping server")

	tcp.Stop()
	// the acceptor may be blocked on submitting a connection, closing the pool releases it
	workers.Close()
	tcp.Wait()

	if !workers.Wait(s.cfg.Shutdown.DrainTimeout) {
		s.log.Warn().
			Int("busy", workers.Busy()).
			Dur("timeout", s.cfg.Shutdown.DrainTimeout).
			Msg("drain timeout elapsed, closing remaining connections")
		workers.Interrupt()

		if !workers.Wait(s.cfg.Shutdown.ForceTimeout) {
			s.log.Error().Int("busy", workers.Busy()).Msg("abandoning stuck workers")
		}
	}

	s.state.Store(int32(Stopped))
	s.log.Info().Msg("server stopped")

	return true
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
