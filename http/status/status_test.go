package status

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	require.Equal(t, Status("Not Found"), Text(NotFound))
	require.Equal(t, Status("OK"), Text(OK))
	require.Equal(t, Status("Client Error"), Text(Code(499)))
	require.Equal(t, Status("Unknown Status Code"), Text(Code(999)))
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, BadRequest, CodeOf(ErrBadRequestLine))
	require.Equal(t, HeaderFieldsTooLarge, CodeOf(fmt.Errorf("parse: %w", ErrTooManyHeaders)))
	require.Equal(t, InternalServerError, CodeOf(fmt.Errorf("something else")))
	require.True(t, NotFound.IsError())
	require.False(t, Created.IsError())
}
