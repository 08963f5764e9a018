package http1

import (
	"fmt"
	"strings"
	"testing"

	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/http/method"
	"github.com/indigo-web/restcore/http/status"
	"github.com/indigo-web/restcore/kv"
	"github.com/indigo-web/restcore/transport/dummy"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func parse(cfg *config.Config, pieces ...string) (*http.Request, error) {
	data := make([][]byte, len(pieces))
	for i, piece := range pieces {
		data[i] = []byte(piece)
	}

	request := http.NewRequest(kv.New())
	err := NewParser(cfg).Parse(dummy.NewMockClient(data...), request)

	return request, err
}

func generateHeaders(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "header-%d: value %d\r\n", i, i)
	}

	return b.String()
}

func TestParser(t *testing.T) {
	cfg := config.Default()

	t.Run("simple GET", func(t *testing.T) {
		request, err := parse(cfg, "GET / HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		require.Equal(t, method.GET, request.Method)
		require.Equal(t, "/", request.Path)
		require.Empty(t, request.Query)
		require.Equal(t, "HTTP/1.1", request.Proto)
		require.True(t, request.Headers.Empty())
		require.Empty(t, request.Body)
	})

	t.Run("headers", func(t *testing.T) {
		request, err := parse(cfg,
			"GET /api/users?id=5&x=y#frag HTTP/1.0\r\n"+
				"Host: localhost\r\n"+
				"accept:  */*  \r\n"+
				"X-Multi: a\r\n"+
				"x-multi: b\r\n\r\n",
		)
		require.NoError(t, err)
		require.Equal(t, "/api/users", request.Path)
		require.Equal(t, "id=5&x=y", request.Query)
		require.Equal(t, "HTTP/1.0", request.Proto)
		require.Equal(t, "localhost", request.Headers.Value("host"))
		require.Equal(t, "*/*", request.Headers.Value("Accept"))

		var multi []string
		for value := range request.Headers.Values("X-MULTI") {
			multi = append(multi, value)
		}
		require.Equal(t, []string{"a", "b"}, multi)

		id, found := request.Param("id")
		require.True(t, found)
		require.Equal(t, "5", id)
	})

	t.Run("split into many reads", func(t *testing.T) {
		raw := "POST /api/users HTTP/1.1\r\nContent-Length: 13\r\n\r\nHello, world!"
		var pieces []string
		for i := range len(raw) {
			pieces = append(pieces, raw[i:i+1])
		}

		request, err := parse(cfg, pieces...)
		require.NoError(t, err)
		require.Equal(t, method.POST, request.Method)
		require.Equal(t, 13, request.ContentLength)
		require.Equal(t, "Hello, world!", string(request.Body))
	})

	t.Run("body in the same read", func(t *testing.T) {
		request, err := parse(cfg, "PUT / HTTP/1.1\r\nContent-Length: 5\r\n\r\nHelloEXTRA")
		require.NoError(t, err)
		require.Equal(t, "Hello", string(request.Body))
	})

	t.Run("chunked body", func(t *testing.T) {
		request, err := parse(cfg,
			"POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n",
			"7\r\nHello, \r\n",
			"6\r\nworld!\r\n0\r\n\r\n",
		)
		require.NoError(t, err)
		require.True(t, request.Chunked)
		require.Equal(t, "Hello, world!", string(request.Body))
		require.Equal(t, 13, request.ContentLength)
	})

	t.Run("no data at all", func(t *testing.T) {
		_, err := parse(cfg)
		require.ErrorIs(t, err, ErrNoRequest)
	})

	t.Run("timeout", func(t *testing.T) {
		request := http.NewRequest(kv.New())
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n")).FailWith(timeoutErr{})
		err := NewParser(cfg).Parse(client, request)
		require.ErrorIs(t, err, status.ErrRequestTimeout)
	})

	t.Run("truncated body", func(t *testing.T) {
		_, err := parse(cfg, "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nHello")
		require.ErrorIs(t, err, status.ErrIncompleteRequest)
	})

	t.Run("malformed", func(t *testing.T) {
		tcs := []struct {
			Name    string
			Request string
			Err     error
		}{
			{"garbage", "hello world\r\n\r\n", status.ErrBadRequestLine},
			{"two tokens", "GET /\r\n\r\n", status.ErrBadRequestLine},
			{"four tokens", "GET / HTTP/1.1 extra\r\n\r\n", status.ErrBadRequestLine},
			{"lowercase method", "get / HTTP/1.1\r\n\r\n", status.ErrBadRequestLine},
			{"unknown method", "BREW / HTTP/1.1\r\n\r\n", status.ErrMethodNotImplemented},
			{"relative path", "GET index.html HTTP/1.1\r\n\r\n", status.ErrBadRequestLine},
			{"not http", "GET / SPDY/3\r\n\r\n", status.ErrBadRequestLine},
			{"http/2", "GET / HTTP/2.0\r\n\r\n", status.ErrHTTPVersionNotSupported},
			{"no colon", "GET / HTTP/1.1\r\nHost localhost\r\n\r\n", status.ErrBadHeader},
			{"space before colon", "GET / HTTP/1.1\r\nHost : localhost\r\n\r\n", status.ErrBadHeader},
			{"empty key", "GET / HTTP/1.1\r\n: value\r\n\r\n", status.ErrBadHeader},
			{"bad content length", "POST / HTTP/1.1\r\nContent-Length: abc\r\n\r\n", status.ErrBadContentLength},
			{"negative content length", "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n", status.ErrBadContentLength},
			{
				"conflicting content lengths",
				"POST / HTTP/1.1\r\nContent-Length: 1\r\nContent-Length: 2\r\n\r\nab",
				status.ErrBadContentLength,
			},
			{
				"ambiguous body length",
				"POST / HTTP/1.1\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\n",
				status.ErrAmbiguousBodyLength,
			},
			{
				"unsupported encoding",
				"POST / HTTP/1.1\r\nTransfer-Encoding: gzip, chunked\r\n\r\n",
				status.ErrUnsupportedEncoding,
			},
			{
				"bad chunk",
				"POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\nHello\r\n0\r\n\r\n",
				status.ErrBadChunk,
			},
			{"unterminated head", "GET / HTTP/1.1\r\nHost: localhost\r\n", status.ErrIncompleteRequest},
		}

		for _, tc := range tcs {
			t.Run(tc.Name, func(t *testing.T) {
				_, err := parse(cfg, tc.Request)
				require.ErrorIs(t, err, tc.Err)
				require.True(t, status.CodeOf(err).IsError())
			})
		}
	})

	t.Run("limits", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.MaxCount = 5
		cfg.Headers.MaxSpace = 256
		cfg.Body.MaxSize = 10

		_, err := parse(cfg, "GET / HTTP/1.1\r\n"+generateHeaders(5)+"\r\n")
		require.NoError(t, err)

		_, err = parse(cfg, "GET / HTTP/1.1\r\n"+generateHeaders(6)+"\r\n")
		require.ErrorIs(t, err, status.ErrTooManyHeaders)
		require.Equal(t, status.HeaderFieldsTooLarge, status.CodeOf(err))

		_, err = parse(cfg, "GET /"+strings.Repeat("a", 300)+" HTTP/1.1\r\n\r\n")
		require.ErrorIs(t, err, status.ErrHeaderFieldsTooLarge)

		_, err = parse(cfg, "GET /", strings.Repeat("a", 300))
		require.ErrorIs(t, err, status.ErrHeaderFieldsTooLarge)

		_, err = parse(cfg, "POST / HTTP/1.1\r\nContent-Length: 11\r\n\r\nHello, world")
		require.ErrorIs(t, err, status.ErrBodyTooLarge)
		require.Equal(t, status.RequestEntityTooLarge, status.CodeOf(err))

		_, err = parse(cfg,
			"POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n",
			"c\r\nHello, world\r\n0\r\n\r\n",
		)
		require.ErrorIs(t, err, status.ErrBodyTooLarge)
	})
}
