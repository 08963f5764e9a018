package status

import "errors"

// HTTPError is an error carrying the response code it must result in.
type HTTPError struct {
	Message string
	Code    Code
	// Public marks the message as meant for the client. Otherwise only the default
	// reason phrase of the code is sent.
	Public bool
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

// NewPublicError returns an error whose message is sent to the client as is.
func NewPublicError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
		Public:  true,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf returns the code carried by the error, or InternalServerError if the error
// isn't an HTTPError.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrBadRequest              = NewError(BadRequest, "bad request")
	ErrBadRequestLine          = NewError(BadRequest, "malformed request line")
	ErrBadHeader               = NewError(BadRequest, "malformed header line")
	ErrBadContentLength        = NewError(BadRequest, "invalid Content-Length value")
	ErrAmbiguousBodyLength     = NewError(BadRequest, "both Content-Length and chunked Transfer-Encoding are set")
	ErrBadChunk                = NewError(BadRequest, "malformed chunk-encoded data")
	ErrIncompleteRequest       = NewError(BadRequest, "connection closed before the request was complete")
	ErrNotFound                = NewError(NotFound, "not found")
	ErrRequestTimeout          = NewError(RequestTimeout, "request timeout")
	ErrBodyTooLarge            = NewError(RequestEntityTooLarge, "request body is too large")
	ErrHeaderFieldsTooLarge    = NewError(HeaderFieldsTooLarge, "too large headers section")
	ErrTooManyHeaders          = NewError(HeaderFieldsTooLarge, "too many headers")
	ErrUnsupportedEncoding     = NewError(NotImplemented, "transfer encoding is not supported")
	ErrMethodNotImplemented    = NewError(NotImplemented, "request method is not supported")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrInternalServerError     = NewError(InternalServerError, "internal server error")
)
