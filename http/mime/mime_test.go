package mime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByFilename(t *testing.T) {
	require.Equal(t, "text/html; charset=utf-8", ByFilename("index.html"))
	require.Equal(t, "text/css; charset=utf-8", ByFilename("style.CSS"))
	require.Equal(t, "text/javascript; charset=utf-8", ByFilename("script.js"))
	require.Equal(t, PNG, ByFilename("logo.png"))
	require.Equal(t, OctetStream, ByFilename("archive.bin"))
}

func TestIsTextual(t *testing.T) {
	require.True(t, IsTextual("application/json"))
	require.True(t, IsTextual("Text/HTML; charset=utf-8"))
	require.False(t, IsTextual("image/png"))
	require.False(t, IsTextual(""))
}
