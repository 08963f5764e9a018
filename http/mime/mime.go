package mime

import (
	"path/filepath"
	"strings"
)

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	CSS         MIME = "text/css"
	JS          MIME = "text/javascript"
	XML         MIME = "text/xml"
	JSON        MIME = "application/json"
	SVG         MIME = "image/svg+xml"
	PNG         MIME = "image/png"
	JPEG        MIME = "image/jpeg"
	GIF         MIME = "image/gif"
	ICO         MIME = "image/vnd.microsoft.icon"
	WEBP        MIME = "image/webp"
	WASM        MIME = "application/wasm"
)

const UTF8 = "utf-8"

var Extension = map[string]MIME{
	".css":  CSS,
	".gif":  GIF,
	".htm":  HTML,
	".html": HTML,
	".ico":  ICO,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".js":   JS,
	".mjs":  JS,
	".json": JSON,
	".png":  PNG,
	".svg":  SVG,
	".txt":  Plain,
	".wasm": WASM,
	".webp": WEBP,
	".xml":  XML,
}

// textual MIMEs are the ones worth compressing and carrying a charset.
var textual = map[MIME]bool{
	Plain: true,
	HTML:  true,
	CSS:   true,
	JS:    true,
	XML:   true,
	JSON:  true,
	SVG:   true,
}

// ByFilename returns the MIME with a charset (for textual types) matching the file
// extension. Unknown extensions are application/octet-stream.
func ByFilename(name string) string {
	m, ok := Extension[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return OctetStream
	}

	return WithCharset(m)
}

// WithCharset appends utf-8 charset parameter to textual MIMEs.
func WithCharset(m MIME) string {
	if textual[m] {
		return m + "; charset=" + UTF8
	}

	return m
}

// IsTextual reports whether the Content-Type value is a textual MIME. Parameters are ignored.
func IsTextual(contentType string) bool {
	m, _, _ := strings.Cut(contentType, ";")
	return textual[strings.ToLower(strings.TrimSpace(m))]
}
