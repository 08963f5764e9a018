package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures log output for assertions. Safe for concurrent use, as workers log
// from their own goroutines.
type TestLogger struct {
	zerolog.Logger
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewTestLogger creates a logger capturing everything down to trace level.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	tl := new(TestLogger)
	tl.Logger = zerolog.New(tl).Level(zerolog.TraceLevel).With().Timestamp().Logger()

	return tl
}

func (tl *TestLogger) Write(b []byte) (int, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return tl.buf.Write(b)
}

// Output returns the captured log output as a string
func (tl *TestLogger) Output() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return tl.buf.String()
}

// Contains checks if the log output contains the given string
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// AssertContains asserts that the log contains the given string
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("Log output does not contain %q\nOutput:\n%s", substr, tl.Output())
	}
}
