package router

import (
	"maps"
	"slices"

	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/http/status"
)

var _ Router = new(Table)

// Table is a router matching request paths exactly. Handlers branch on the request
// method on their own.
//
// Table isn't synchronized: it must be completely filled before serving starts and
// must be treated as read-only afterwards.
type Table struct {
	routes map[string]http.Handler
}

func NewTable() *Table {
	return &Table{
		routes: make(map[string]http.Handler),
	}
}

// Add registers the handler at the path. A handler previously registered at the same
// path is replaced.
func (t *Table) Add(path string, handler http.Handler) *Table {
	t.routes[path] = handler
	return t
}

// AddFunc is the same as Add, but accepts a plain function.
func (t *Table) AddFunc(path string, fn http.HandlerFunc) *Table {
	return t.Add(path, fn)
}

// Lookup returns the handler registered at the path.
func (t *Table) Lookup(path string) (http.Handler, bool) {
	handler, found := t.routes[path]
	return handler, found
}

// Paths returns all the registered paths in sorted order.
func (t *Table) Paths() []string {
	return slices.Sorted(maps.Keys(t.routes))
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.routes)
}

func (t *Table) OnRequest(request *http.Request) *http.Response {
	handler, found := t.routes[request.Path]
	if !found {
		return http.Error(request, status.ErrNotFound)
	}

	return handler.Serve(request)
}

func (t *Table) OnError(request *http.Request, err error) *http.Response {
	return http.Error(request, err)
}
