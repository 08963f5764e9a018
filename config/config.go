package config

import (
	"errors"
	"fmt"
	"time"
)

var ErrBadConfig = errors.New("bad config")

type (
	Server struct {
		// Port to listen on. Zero picks a random free port, which is mostly useful in tests.
		Port uint16 `test:"nullable"`
		// Backlog is the depth of the kernel queue of connections that completed the handshake
		// but weren't accepted yet. Passed directly to listen(2).
		Backlog int
		// Workers is the number of connections served simultaneously. The acceptor blocks when
		// all of them are busy.
		Workers int
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout limits how long a single read may block. A client failing to send the
		// complete request in time receives 408 Request Timeout.
		ReadTimeout time.Duration
		// WriteTimeout limits writing the whole response.
		WriteTimeout time.Duration
		// SmallBody limits how big must a response body be in order to be compressed if the
		// client accepts gzip.
		SmallBody int
	}

	Headers struct {
		// MaxCount is the maximal number of request headers.
		MaxCount int
		// MaxSpace limits the size of the request line and the header block together.
		MaxSpace int
	}

	Body struct {
		// MaxSize describes the maximal size of a request body, that can be processed.
		MaxSize int
	}

	Shutdown struct {
		// DrainTimeout is how long Stop waits for in-flight requests before closing their
		// connections forcibly.
		DrainTimeout time.Duration
		// ForceTimeout is how long Stop waits for the workers after connections were forcibly
		// closed. A handler stuck past it is abandoned.
		ForceTimeout time.Duration
	}

	Database struct {
		// Backend is the backend type tag, see db.New.
		Backend string
		// DSN is passed to the backend opaquely.
		DSN string `test:"nullable"`
	}

	Static struct {
		// Root is the directory the static assets are read from.
		Root string
		// Watch enables cache invalidation on filesystem events.
		Watch bool `test:"nullable"`
	}

	Log struct {
		// Level is one of zerolog levels: trace, debug, info, warn, error.
		Level string
		// Format is either console or json.
		Format string
	}
)

// Config holds settings used across the server, the database layer and the process wiring.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because zero values are mostly invalid.
type Config struct {
	Server   Server
	NET      NET
	Headers  Headers
	Body     Body
	Shutdown Shutdown
	Database Database
	Static   Static
	Log      Log
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:    8080,
			Backlog: 64,
			Workers: 8,
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			SmallBody:      1024,
		},
		Headers: Headers{
			MaxCount: 50,
			MaxSpace: 16 * 1024,
		},
		Body: Body{
			MaxSize: 8 * 1024 * 1024,
		},
		Shutdown: Shutdown{
			DrainTimeout: 5 * time.Second,
			ForceTimeout: 1 * time.Second,
		},
		Database: Database{
			Backend: "memory",
		},
		Static: Static{
			Root: "FrontEnd",
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports values the server can't work with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Backlog <= 0:
		return fmt.Errorf("%w: backlog must be positive, got %d", ErrBadConfig, c.Server.Backlog)
	case c.Server.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrBadConfig, c.Server.Workers)
	case c.NET.ReadBufferSize <= 0:
		return fmt.Errorf("%w: read buffer size must be positive", ErrBadConfig)
	case c.Headers.MaxSpace <= 0 || c.Headers.MaxCount <= 0:
		return fmt.Errorf("%w: headers limits must be positive", ErrBadConfig)
	case c.Body.MaxSize < 0:
		return fmt.Errorf("%w: body size limit must not be negative", ErrBadConfig)
	}

	return nil
}
