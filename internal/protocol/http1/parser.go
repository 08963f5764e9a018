package http1

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/http/method"
	"github.com/indigo-web/restcore/http/status"
	"github.com/indigo-web/restcore/transport"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// ErrNoRequest is returned when the peer closed the connection without sending
// a single byte. There's nobody to respond to in this case.
var ErrNoRequest = errors.New("connection closed before any data was received")

const (
	proto10 = "HTTP/1.0"
	proto11 = "HTTP/1.1"
)

var headEnd = []byte("\r\n\r\n")

// Parser assembles a single request from the client. As connections aren't reused,
// a parser serves exactly one request, too.
type Parser struct {
	cfg  *config.Config
	buff []byte
}

func NewParser(cfg *config.Config) *Parser {
	return &Parser{
		cfg: cfg,
	}
}

// Parse reads the request line, the header block and the body into the request.
// Returned errors are status.HTTPError unless the connection itself is unusable or
// the peer sent nothing (ErrNoRequest); in both cases no response must be written.
func (p *Parser) Parse(client transport.Client, request *http.Request) error {
	head, rest, err := p.readHead(client)
	if err != nil {
		return err
	}

	if err = p.parseHead(head, request); err != nil {
		return err
	}

	client.Pushback(rest)

	return p.readBody(client, request)
}

// readHead accumulates data until the header block terminator. The returned rest is
// whatever followed the terminator in the same read, that is the beginning of the body.
func (p *Parser) readHead(client transport.Client) (head, rest []byte, err error) {
	maxSpace := p.cfg.Headers.MaxSpace

	for {
		data, err := client.Read()
		if len(data) > 0 {
			scanFrom := max(0, len(p.buff)-len(headEnd)+1)
			p.buff = append(p.buff, data...)

			if idx := bytes.Index(p.buff[scanFrom:], headEnd); idx != -1 {
				end := scanFrom + idx
				if end > maxSpace {
					return nil, nil, status.ErrHeaderFieldsTooLarge
				}

				return p.buff[:end], p.buff[end+len(headEnd):], nil
			}

			if len(p.buff) > maxSpace {
				return nil, nil, status.ErrHeaderFieldsTooLarge
			}
		}

		if err != nil {
			if len(p.buff) == 0 && errors.Is(err, io.EOF) {
				return nil, nil, ErrNoRequest
			}

			return nil, nil, readError(err)
		}
	}
}

func (p *Parser) parseHead(head []byte, request *http.Request) error {
	requestLine, fields, _ := strings.Cut(uf.B2S(head), "\r\n")
	if err := parseRequestLine(requestLine, request); err != nil {
		return err
	}

	if len(fields) == 0 {
		return nil
	}

	count := 0

	for line := range strings.SplitSeq(fields, "\r\n") {
		if count++; count > p.cfg.Headers.MaxCount {
			return status.ErrTooManyHeaders
		}

		key, value, found := strings.Cut(line, ":")
		if !found || len(key) == 0 || strings.ContainsAny(key, " \t") {
			return status.ErrBadHeader
		}

		request.Headers.Add(key, strings.Trim(value, " \t"))
	}

	return nil
}

func parseRequestLine(line string, request *http.Request) error {
	rawMethod, line, found := strings.Cut(line, " ")
	if !found {
		return status.ErrBadRequestLine
	}

	target, proto, found := strings.Cut(line, " ")
	if !found || len(target) == 0 || strings.Contains(proto, " ") {
		return status.ErrBadRequestLine
	}

	request.Method = method.Parse(rawMethod)
	if request.Method == method.Unknown {
		if isToken(rawMethod) {
			return status.ErrMethodNotImplemented
		}

		return status.ErrBadRequestLine
	}

	if target[0] != '/' && !(target == "*" && request.Method == method.OPTIONS) {
		return status.ErrBadRequestLine
	}

	target, _, _ = strings.Cut(target, "#")
	request.Path, request.Query, _ = strings.Cut(target, "?")

	switch {
	case proto == proto11, proto == proto10:
		request.Proto = proto
	case strings.HasPrefix(proto, "HTTP/") && len(proto) > len("HTTP/"):
		return status.ErrHTTPVersionNotSupported
	default:
		return status.ErrBadRequestLine
	}

	return nil
}

func (p *Parser) readBody(client transport.Client, request *http.Request) error {
	te, chunked := request.Headers.Get("Transfer-Encoding")
	cl, sized := request.Headers.Get("Content-Length")

	if chunked {
		if !strcomp.EqualFold(strings.TrimSpace(te), "chunked") {
			return status.ErrUnsupportedEncoding
		}

		if sized {
			return status.ErrAmbiguousBodyLength
		}

		return p.readChunked(client, request)
	}

	if !sized {
		return nil
	}

	for value := range request.Headers.Values("Content-Length") {
		if value != cl {
			return status.ErrBadContentLength
		}
	}

	length, err := strconv.ParseUint(strings.TrimSpace(cl), 10, 63)
	if err != nil {
		return status.ErrBadContentLength
	}

	if length > uint64(p.cfg.Body.MaxSize) {
		return status.ErrBodyTooLarge
	}

	request.ContentLength = int(length)

	return p.readSized(client, request)
}

func (p *Parser) readSized(client transport.Client, request *http.Request) error {
	length := request.ContentLength
	if length == 0 {
		return nil
	}

	body := make([]byte, 0, length)

	for len(body) < length {
		data, err := client.Read()
		// bytes past the body are dropped, as no pipelining is supported
		body = append(body, data[:min(len(data), length-len(body))]...)

		if err != nil && len(body) < length {
			return readError(err)
		}
	}

	request.Body = body

	return nil
}

func (p *Parser) readChunked(client transport.Client, request *http.Request) error {
	var (
		body    []byte
		parser  = chunkedbody.NewParser(chunkedbody.DefaultSettings())
		trailer = request.Headers.Has("Trailer")
	)

	for {
		data, err := client.Read()

		for len(data) > 0 {
			chunk, extra, perr := parser.Parse(data, trailer)
			body = append(body, chunk...)
			if len(body) > p.cfg.Body.MaxSize {
				return status.ErrBodyTooLarge
			}

			switch perr {
			case nil:
			case io.EOF:
				request.Body = body
				request.ContentLength = len(body)
				request.Chunked = true

				return nil
			default:
				return status.ErrBadChunk
			}

			if len(extra) == len(data) && len(chunk) == 0 {
				break
			}

			data = extra
		}

		if err != nil {
			return readError(err)
		}
	}
}

// readError converts an error of reading from the connection that happened in the
// middle of a request.
func readError(err error) error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return status.ErrRequestTimeout
	case errors.Is(err, io.EOF):
		return status.ErrIncompleteRequest
	default:
		return err
	}
}

// isToken reports whether the string consists of characters allowed in a method token.
// Only a subset of tchar is considered, as methods are case-sensitive and uppercase
// by convention.
func isToken(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		c := str[i]
		if !(c >= 'A' && c <= 'Z') && c != '-' && c != '_' {
			return false
		}
	}

	return true
}
