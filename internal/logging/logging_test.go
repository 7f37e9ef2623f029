package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLoggerTo(&buf, false)

	l.Info("loaded %d rows", 42)
	assert.Equal(t, "loaded 42 rows\n", buf.String())
}

func TestConsoleLogger_VerboseSuppressed(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLoggerTo(&buf, false)

	l.Verbose("detail")
	assert.Empty(t, buf.String())
}

func TestConsoleLogger_VerboseEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLoggerTo(&buf, true)

	l.Verbose("detail %s", "x")
	assert.Equal(t, "[VERBOSE] detail x\n", buf.String())
}

func TestConsoleLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLoggerTo(&buf, false)

	l.Error("boom")
	assert.Equal(t, "[ERROR] boom\n", buf.String())
}

func TestConsoleLogger_NoArgsPercentLiteral(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLoggerTo(&buf, false)

	// Messages without args must not be re-interpreted as format strings.
	l.Info("100% complete")
	assert.Equal(t, "100% complete\n", buf.String())
}

func TestNullLogger(t *testing.T) {
	l := NewNullLogger()
	l.Verbose("a")
	l.Info("b")
	l.Error("c")
}
