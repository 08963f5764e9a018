package http1

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/logging"
	"github.com/indigo-web/restcore/router"
	"github.com/stretchr/testify/require"
)

// roundtrip sends the raw request over an in-memory connection and returns everything
// the server wrote back before closing it.
func roundtrip(t *testing.T, c *Conn, request string) string {
	server, client := net.Pipe()
	done := make(chan struct{})

	go func() {
		c.Serve(server)
		_ = server.Close()
		close(done)
	}()

	go func() {
		if len(request) > 0 {
			_, _ = client.Write([]byte(request))
		}
	}()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	response, err := io.ReadAll(client)
	require.NoError(t, err)
	_ = client.Close()
	<-done

	return string(response)
}

func newConn(t *testing.T) (*Conn, *logging.TestLogger) {
	table := router.NewTable().
		AddFunc("/", func(request *http.Request) *http.Response {
			return request.Respond().String("index")
		}).
		AddFunc("/echo", func(request *http.Request) *http.Response {
			return request.Respond().Bytes(request.Body)
		}).
		AddFunc("/nil", func(*http.Request) *http.Response {
			return nil
		}).
		AddFunc("/panic", func(*http.Request) *http.Response {
			panic("something went wrong")
		})

	log := logging.NewTestLogger(t)
	cfg := config.Default()
	cfg.NET.ReadTimeout = time.Second

	return New(cfg, table, log.Logger), log
}

func TestConn(t *testing.T) {
	t.Run("dispatch", func(t *testing.T) {
		c, log := newConn(t)
		response := roundtrip(t, c, "GET / HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 200 OK\r\n"))
		require.True(t, strings.HasSuffix(response, "\r\n\r\nindex"))
		log.AssertContains(t, "served")
	})

	t.Run("body", func(t *testing.T) {
		c, _ := newConn(t)
		response := roundtrip(t, c, "POST /echo HTTP/1.1\r\nContent-Length: 5\r\n\r\nHello")
		require.True(t, strings.HasSuffix(response, "\r\n\r\nHello"))
	})

	t.Run("not found", func(t *testing.T) {
		c, _ := newConn(t)
		response := roundtrip(t, c, "GET /missing HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 404 Not Found\r\n"))
		require.True(t, strings.HasSuffix(response, `{"status":"error","message":"Not Found"}`))
	})

	t.Run("nil response", func(t *testing.T) {
		c, _ := newConn(t)
		response := roundtrip(t, c, "GET /nil HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 200 OK\r\n"))
	})

	t.Run("panic", func(t *testing.T) {
		c, log := newConn(t)
		response := roundtrip(t, c, "GET /panic HTTP/1.1\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 500 Internal Server Error\r\n"))
		log.AssertContains(t, "handler panicked")
		log.AssertContains(t, "something went wrong")
	})

	t.Run("malformed", func(t *testing.T) {
		c, _ := newConn(t)
		response := roundtrip(t, c, "NONSENSE\r\n\r\n")
		require.True(t, strings.HasPrefix(response, "HTTP/1.1 400 Bad Request\r\n"))
	})

	t.Run("nothing sent", func(t *testing.T) {
		c, _ := newConn(t)
		server, client := net.Pipe()
		done := make(chan struct{})
		go func() {
			c.Serve(server)
			close(done)
		}()

		require.NoError(t, client.Close())
		<-done
	})
}
