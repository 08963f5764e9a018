package http

import (
	"net"
	"net/url"

	"github.com/indigo-web/restcore/http/method"
	"github.com/indigo-web/restcore/kv"
)

type (
	Headers = *kv.Storage
	Header  = kv.Pair
)

// Request represents an HTTP request. It's filled by the parser once and must be treated
// as read-only by handlers.
type Request struct {
	// Method is the request method token.
	Method method.Method
	// Path is the request target without the query and the fragment.
	Path string
	// Query is the raw query string (without the leading question mark). It's parsed
	// only on demand via Params.
	Query string
	// Proto is the protocol token as received, e.g. HTTP/1.1.
	Proto string
	// Headers holds non-normalized header pairs, though lookup is case-insensitive.
	Headers Headers
	// ContentLength holds the value of the Content-Length header, or the decoded body length
	// for chunked requests.
	ContentLength int
	// Chunked tells whether the body was transferred using chunked Transfer-Encoding.
	Chunked bool
	// Body is the complete request body. Empty if there was none.
	Body []byte
	// Remote holds the remote address of the connection.
	Remote net.Addr
	// ID correlates the request with log records.
	ID string
	params url.Values
}

func NewRequest(headers Headers) *Request {
	return &Request{
		Method:  method.Unknown,
		Headers: headers,
	}
}

// Params parses the query string. The result is cached, so it's cheap to call it repeatedly.
// A malformed query results in whatever pairs could be decoded.
func (r *Request) Params() url.Values {
	if r.params == nil {
		r.params, _ = url.ParseQuery(r.Query)
	}

	return r.params
}

// Param returns the first value of the query parameter.
func (r *Request) Param(key string) (string, bool) {
	values, found := r.Params()[key]
	if !found || len(values) == 0 {
		return "", false
	}

	return values[0], true
}

// Respond returns a fresh response builder. Just a shorthand for NewResponse, to keep
// handlers concise.
func (r *Request) Respond() *Response {
	return NewResponse()
}
