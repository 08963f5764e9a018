package http1

import (
	"errors"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/http/status"
	"github.com/indigo-web/restcore/kv"
	"github.com/indigo-web/restcore/router"
	"github.com/indigo-web/restcore/transport"
	"github.com/rs/zerolog"
)

const preallocHeaders = 10

// Conn serves exactly one request over the connection: parse, route, call the handler,
// write the response. Closing the connection is up to the caller.
type Conn struct {
	cfg    *config.Config
	router router.Router
	log    zerolog.Logger
}

func New(cfg *config.Config, r router.Router, log zerolog.Logger) *Conn {
	return &Conn{
		cfg:    cfg,
		router: r,
		log:    log,
	}
}

func (c *Conn) Serve(conn net.Conn) {
	started := time.Now()
	client := transport.NewClient(conn, c.cfg.NET, make([]byte, c.cfg.NET.ReadBufferSize))
	request := http.NewRequest(kv.NewPrealloc(preallocHeaders))
	request.Remote = conn.RemoteAddr()
	request.ID = uuid.NewString()
	log := c.log.With().Str("request_id", request.ID).Logger()

	var response *http.Response

	switch err := NewParser(c.cfg).Parse(client, request); {
	case err == nil:
		response = c.dispatch(request, log)
	case errors.Is(err, ErrNoRequest):
		return
	case isHTTPError(err):
		log.Debug().Err(err).Stringer("remote", request.Remote).Msg("malformed request")
		response = notNil(request, c.router.OnError(request, err))
	default:
		log.Debug().Err(err).Stringer("remote", request.Remote).Msg("connection dropped")
		return
	}

	if err := NewSerializer(c.cfg).Write(client, request, response); err != nil {
		log.Debug().Err(err).Msg("failed to write the response")
		return
	}

	log.Debug().
		Str("method", request.Method.String()).
		Str("path", request.Path).
		Uint16("status", uint16(response.Reveal().Code)).
		Dur("took", time.Since(started)).
		Msg("served")
}

// dispatch calls the router, turning a panic into 500 Internal Server Error.
func (c *Conn) dispatch(request *http.Request, log zerolog.Logger) (response *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", request.Path).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")

			response = notNil(request, c.router.OnError(request, status.ErrInternalServerError))
		}
	}()

	return notNil(request, c.router.OnRequest(request))
}

func isHTTPError(err error) bool {
	var httpErr status.HTTPError
	return errors.As(err, &httpErr)
}

func notNil(request *http.Request, response *http.Response) *http.Response {
	if response != nil {
		return response
	}

	return http.Respond(request)
}
