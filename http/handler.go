package http

// Handler processes a request and produces a response. A nil response is
// treated as an empty 200 OK.
//
// Handlers are called concurrently from multiple workers, so any state they own must be
// synchronized. Dependencies they hold must outlive the server.
type Handler interface {
	Serve(request *Request) *Response
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(request *Request) *Response

func (h HandlerFunc) Serve(request *Request) *Response {
	return h(request)
}
