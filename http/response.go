package http

import (
	"errors"
	"strconv"

	"github.com/indigo-web/restcore/http/mime"
	"github.com/indigo-web/restcore/http/status"
	"github.com/indigo-web/restcore/kv"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

const preallocRespHeaders = 4

// Fields are the values collected by the Response builder.
type Fields struct {
	Code status.Code
	// Status is a custom reason phrase. If empty, the default one for the Code is used.
	Status  status.Status
	Headers *kv.Storage
	Body    []byte
}

// Response is a builder of an HTTP response. It's consumed exactly once by the serializer.
type Response struct {
	fields Fields
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK
// and no headers.
func NewResponse() *Response {
	return &Response{
		fields: Fields{
			Code:    status.OK,
			Headers: kv.NewPrealloc(preallocRespHeaders),
		},
	}
}

// Code sets a Response code.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	return r
}

// Status sets a custom reason phrase.
func (r *Response) Status(status status.Status) *Response {
	r.fields.Status = status
	return r
}

// Header sets the header value, overriding all the previous values of the key.
func (r *Response) Header(key, value string) *Response {
	r.fields.Headers.Set(key, value)
	return r
}

// AddHeader appends one more value to the key.
func (r *Response) AddHeader(key, value string) *Response {
	r.fields.Headers.Add(key, value)
	return r
}

// ContentType sets the Content-Type header value.
func (r *Response) ContentType(value string) *Response {
	return r.Header("Content-Type", value)
}

// ContentLength explicitly sets the Content-Length header. Normally it's derived from the
// body length during serialization.
func (r *Response) ContentLength(n int) *Response {
	return r.Header("Content-Length", strconv.Itoa(n))
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.fields.Body = body
	return r
}

// Write implements io.Writer. It always returns n=len(b) and err=nil
func (r *Response) Write(b []byte) (n int, err error) {
	r.fields.Body = append(r.fields.Body, b...)
	return len(b), nil
}

// TryJSON serializes the model into the body and sets application/json content type.
func (r *Response) TryJSON(model any) (*Response, error) {
	body, err := json.ConfigCompatibleWithStandardLibrary.Marshal(model)
	if err != nil {
		return r, err
	}

	return r.Bytes(body).ContentType(mime.JSON), nil
}

// JSON does the same as TryJSON does, except returned error is being implicitly wrapped
// by Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error turns the response into an error response. The code is taken from status.HTTPError,
// or defaults to 500 Internal Server Error. The body is a JSON object in form of
// {"status":"error","message":"<reason phrase>"}, where the message of a public
// status.HTTPError replaces the reason phrase. If passed err is nil, nothing happens.
func (r *Response) Error(err error) *Response {
	if err == nil {
		return r
	}

	code := status.CodeOf(err)
	message := string(status.Text(code))

	var httpErr status.HTTPError
	if errors.As(err, &httpErr) && httpErr.Public {
		message = httpErr.Message
	}

	return r.
		Code(code).
		ContentType(mime.JSON).
		Bytes(errorBody(message))
}

// Reveal returns the collected values. Used by the serializer.
func (r *Response) Reveal() *Fields {
	return &r.fields
}

type errorModel struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorBody renders the standard error body for the code.
func ErrorBody(code status.Code) []byte {
	return errorBody(string(status.Text(code)))
}

func errorBody(message string) []byte {
	body, _ := json.ConfigCompatibleWithStandardLibrary.Marshal(errorModel{
		Status:  "error",
		Message: message,
	})

	return body
}

// Respond is a predicate to request.Respond(). May be used as a dummy handler
func Respond(request *Request) *Response {
	return request.Respond()
}

// JSON is a predicate to request.Respond().JSON(...)
func JSON(request *Request, model any) *Response {
	return request.Respond().JSON(model)
}

// Error is a predicate to request.Respond().Error(...)
func Error(request *Request, err error) *Response {
	return request.Respond().Error(err)
}
