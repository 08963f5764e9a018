package static

import (
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/http/mime"
	"github.com/indigo-web/restcore/http/status"
	"github.com/rs/zerolog"
)

// File returns a handler serving the file regardless of the request method. The
// Content-Type is derived from the file extension.
func File(store *Store, name string, log zerolog.Logger) http.Handler {
	contentType := mime.ByFilename(name)

	return http.HandlerFunc(func(request *http.Request) *http.Response {
		data, err := store.Read(name)
		if err != nil {
			log.Debug().Err(err).Str("file", name).Msg("static file unavailable")

			return request.Respond().
				Code(status.NotFound).
				ContentType(mime.WithCharset(mime.HTML)).
				String("<h1>404 Not Found</h1><p>File: " + name + "</p>")
		}

		return request.Respond().
			ContentType(contentType).
			Bytes(data)
	})
}
