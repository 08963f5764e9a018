package status

type (
	Code   uint16
	Status string
)

// Status codes the server is able to emit on its own. Handlers are free to use any
// other code, it'll be rendered with a generic reason phrase.
const (
	OK        Code = 200 // RFC 9110, 15.3.1
	Created   Code = 201 // RFC 9110, 15.3.2
	Accepted  Code = 202 // RFC 9110, 15.3.3
	NoContent Code = 204 // RFC 9110, 15.3.5

	MovedPermanently  Code = 301 // RFC 9110, 15.4.2
	Found             Code = 302 // RFC 9110, 15.4.3
	NotModified       Code = 304 // RFC 9110, 15.4.5
	TemporaryRedirect Code = 307 // RFC 9110, 15.4.8

	BadRequest            Code = 400 // RFC 9110, 15.5.1
	Unauthorized          Code = 401 // RFC 9110, 15.5.2
	Forbidden             Code = 403 // RFC 9110, 15.5.4
	NotFound              Code = 404 // RFC 9110, 15.5.5
	MethodNotAllowed      Code = 405 // RFC 9110, 15.5.6
	RequestTimeout        Code = 408 // RFC 9110, 15.5.9
	Conflict              Code = 409 // RFC 9110, 15.5.10
	LengthRequired        Code = 411 // RFC 9110, 15.5.12
	RequestEntityTooLarge Code = 413 // RFC 9110, 15.5.14
	UnsupportedMediaType  Code = 415 // RFC 9110, 15.5.16
	UnprocessableEntity   Code = 422 // RFC 9110, 15.5.21
	HeaderFieldsTooLarge  Code = 431 // RFC 6585, 5

	InternalServerError     Code = 500 // RFC 9110, 15.6.1
	NotImplemented          Code = 501 // RFC 9110, 15.6.2
	ServiceUnavailable      Code = 503 // RFC 9110, 15.6.4
	HTTPVersionNotSupported Code = 505 // RFC 9110, 15.6.6
)

var texts = map[Code]Status{
	OK:                      "OK",
	Created:                 "Created",
	Accepted:                "Accepted",
	NoContent:               "No Content",
	MovedPermanently:        "Moved Permanently",
	Found:                   "Found",
	NotModified:             "Not Modified",
	TemporaryRedirect:       "Temporary Redirect",
	BadRequest:              "Bad Request",
	Unauthorized:            "Unauthorized",
	Forbidden:               "Forbidden",
	NotFound:                "Not Found",
	MethodNotAllowed:        "Method Not Allowed",
	RequestTimeout:          "Request Timeout",
	Conflict:                "Conflict",
	LengthRequired:          "Length Required",
	RequestEntityTooLarge:   "Request Entity Too Large",
	UnsupportedMediaType:    "Unsupported Media Type",
	UnprocessableEntity:     "Unprocessable Entity",
	HeaderFieldsTooLarge:    "Request Header Fields Too Large",
	InternalServerError:     "Internal Server Error",
	NotImplemented:          "Not Implemented",
	ServiceUnavailable:      "Service Unavailable",
	HTTPVersionNotSupported: "HTTP Version Not Supported",
}

// Text returns a reason phrase for the code. Unknown codes get a generic phrase
// of their class, so a status line is always well-formed.
func Text(code Code) Status {
	if text, ok := texts[code]; ok {
		return text
	}

	switch {
	case code < 100:
		return "Unknown Status Code"
	case code < 200:
		return "Informational"
	case code < 300:
		return "Success"
	case code < 400:
		return "Redirection"
	case code < 500:
		return "Client Error"
	case code < 600:
		return "Server Error"
	default:
		return "Unknown Status Code"
	}
}

// IsError reports whether the code belongs to 4xx or 5xx class.
func (c Code) IsError() bool {
	return c >= 400 && c < 600
}
