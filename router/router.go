package router

import (
	"github.com/indigo-web/restcore/http"
)

// Router decides which response a request results in. OnError is called instead of
// OnRequest if the request couldn't be parsed or the handler panicked.
type Router interface {
	OnRequest(request *http.Request) *http.Response
	OnError(request *http.Request, err error) *http.Response
}
