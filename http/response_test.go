package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/indigo-web/restcore/http/status"
	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		fields := NewResponse().Reveal()
		require.Equal(t, status.OK, fields.Code)
		require.True(t, fields.Headers.Empty())
		require.Empty(t, fields.Body)
	})

	t.Run("JSON", func(t *testing.T) {
		fields := NewResponse().JSON([]int{1, 2, 3}).Reveal()
		require.Equal(t, "[1,2,3]", string(fields.Body))
		require.Equal(t, "application/json", fields.Headers.Value("content-type"))
	})

	t.Run("header overrides", func(t *testing.T) {
		fields := NewResponse().
			Header("X-Foo", "1").
			Header("x-foo", "2").
			AddHeader("Set-Cookie", "a=1").
			AddHeader("Set-Cookie", "b=2").
			Reveal()

		require.Equal(t, "2", fields.Headers.Value("X-Foo"))
		require.Equal(t, 3, fields.Headers.Len())
	})

	t.Run("HTTP error", func(t *testing.T) {
		fields := NewResponse().Error(status.ErrNotFound).Reveal()
		require.Equal(t, status.NotFound, fields.Code)
		require.Equal(t, `{"status":"error","message":"Not Found"}`, string(fields.Body))
	})

	t.Run("public HTTP error", func(t *testing.T) {
		err := status.NewPublicError(status.BadRequest, "name is required")
		fields := NewResponse().Error(fmt.Errorf("create: %w", err)).Reveal()
		require.Equal(t, status.BadRequest, fields.Code)
		require.Equal(t, `{"status":"error","message":"name is required"}`, string(fields.Body))

		fields = NewResponse().Error(status.ErrBadContentLength).Reveal()
		require.Equal(t, `{"status":"error","message":"Bad Request"}`, string(fields.Body))
	})

	t.Run("plain error", func(t *testing.T) {
		fields := NewResponse().Error(errors.New("boom")).Reveal()
		require.Equal(t, status.InternalServerError, fields.Code)
		require.Equal(t, `{"status":"error","message":"Internal Server Error"}`, string(fields.Body))
	})

	t.Run("nil error", func(t *testing.T) {
		fields := NewResponse().String("ok").Error(nil).Reveal()
		require.Equal(t, status.OK, fields.Code)
		require.Equal(t, "ok", string(fields.Body))
	})
}

func TestRequestParams(t *testing.T) {
	req := NewRequest(nil)
	req.Query = "id=42&name=Alice%20B&flag"

	id, found := req.Param("id")
	require.True(t, found)
	require.Equal(t, "42", id)

	name, _ := req.Param("name")
	require.Equal(t, "Alice B", name)

	_, found = req.Param("missing")
	require.False(t, found)
}
