package http1

import (
	"bytes"
	"strconv"
	"strings"
	"sync"

	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/http/method"
	"github.com/indigo-web/restcore/http/mime"
	"github.com/indigo-web/restcore/http/status"
	"github.com/indigo-web/restcore/transport"
	"github.com/indigo-web/utils/strcomp"
	"github.com/klauspost/compress/gzip"
)

const defaultContentType = mime.Plain + "; charset=" + mime.UTF8

var gzipWriters = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

// Serializer renders a response into its wire representation and writes it in one go.
type Serializer struct {
	cfg  *config.Config
	buff []byte
}

func NewSerializer(cfg *config.Config) *Serializer {
	return &Serializer{
		cfg:  cfg,
		buff: make([]byte, 0, cfg.NET.ReadBufferSize),
	}
}

// Write serializes the response to the request. The request may be only partially
// filled, if it failed to be parsed.
func (s *Serializer) Write(client transport.Client, request *http.Request, response *http.Response) error {
	fields := response.Reveal()
	body := fields.Body
	headers := fields.Headers
	bodyless := fields.Code == status.NoContent || fields.Code == status.NotModified

	if !bodyless && s.shouldCompress(request, fields) {
		compressed, err := compress(body)
		if err != nil {
			return err
		}

		body = compressed
		headers.Set("Content-Encoding", "gzip")
		headers.Add("Vary", "Accept-Encoding")
	}

	s.appendProtocol(request.Proto)
	s.appendStatus(fields)

	for key, value := range headers.Pairs() {
		if strcomp.EqualFold(key, "Connection") ||
			(bodyless && strcomp.EqualFold(key, "Content-Length")) {
			continue
		}

		s.appendHeader(key, value)
	}

	if !bodyless {
		if len(body) > 0 && !headers.Has("Content-Type") {
			s.appendHeader("Content-Type", defaultContentType)
		}

		if !headers.Has("Content-Length") {
			s.buff = append(s.buff, "Content-Length: "...)
			s.buff = strconv.AppendInt(s.buff, int64(len(body)), 10)
			s.crlf()
		}
	}

	s.appendHeader("Connection", "close")
	s.crlf()

	if !bodyless && request.Method != method.HEAD {
		s.buff = append(s.buff, body...)
	}

	_, err := client.Write(s.buff)
	s.buff = s.buff[:0]

	return err
}

func (s *Serializer) shouldCompress(request *http.Request, fields *http.Fields) bool {
	return len(fields.Body) >= s.cfg.NET.SmallBody &&
		!fields.Headers.Has("Content-Encoding") &&
		!fields.Headers.Has("Content-Length") &&
		mime.IsTextual(fields.Headers.Value("Content-Type")) &&
		acceptsGzip(request)
}

func (s *Serializer) appendProtocol(proto string) {
	if proto != proto10 {
		// a request that failed to be parsed may have no protocol at all
		proto = proto11
	}

	s.buff = append(s.buff, proto...)
	s.buff = append(s.buff, ' ')
}

func (s *Serializer) appendStatus(fields *http.Fields) {
	s.buff = strconv.AppendUint(s.buff, uint64(fields.Code), 10)
	s.buff = append(s.buff, ' ')

	text := fields.Status
	if len(text) == 0 {
		text = status.Text(fields.Code)
	}

	s.buff = append(s.buff, text...)
	s.crlf()
}

func (s *Serializer) appendHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, ':', ' ')
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, '\r', '\n')
}

// acceptsGzip reports whether the Accept-Encoding header lists gzip with a non-zero weight.
func acceptsGzip(request *http.Request) bool {
	for value := range request.Headers.Values("Accept-Encoding") {
		for token := range strings.SplitSeq(value, ",") {
			coding, params, _ := strings.Cut(token, ";")
			if !strcomp.EqualFold(strings.TrimSpace(coding), "gzip") {
				continue
			}

			params = strings.ReplaceAll(params, " ", "")

			return params != "q=0" && params != "q=0.0" && params != "q=0.00" && params != "q=0.000"
		}
	}

	return false
}

func compress(body []byte) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, len(body)/2))
	gz := gzipWriters.Get().(*gzip.Writer)
	defer gzipWriters.Put(gz)

	gz.Reset(out)
	if _, err := gz.Write(body); err != nil {
		return nil, err
	}

	if err := gz.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
