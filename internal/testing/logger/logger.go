package logger

import (
	"testing"

	"github.com/go-kit/kit/log"
)

var _ log.Logger = &TestLogger{}

// TestLogger routes log lines through t.Log so they only show for failing
// or verbose tests.
type TestLogger struct {
	T testing.TB
}

func (t *TestLogger) Log(keyvals ...interface{}) error {
	t.T.Helper()
	t.T.Log(keyvals...)
	return nil
}
