package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bennypowers.dev/cembundle/internal/logging"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", logging.LogLevelDebug.String())
	assert.Equal(t, "INFO", logging.LogLevelInfo.String())
	assert.Equal(t, "WARNING", logging.LogLevelWarning.String())
	assert.Equal(t, "ERROR", logging.LogLevelError.String())
}

func TestLoggerDebugGate(t *testing.T) {
	l := logging.GetLogger()
	l.SetDebugEnabled(false)
	assert.False(t, l.IsDebugEnabled())
	l.SetDebugEnabled(true)
	assert.True(t, l.IsDebugEnabled())
	l.SetDebugEnabled(false)
}

func TestLoggerQuietGate(t *testing.T) {
	l := logging.GetLogger()
	l.SetQuietEnabled(true)
	assert.True(t, l.IsQuietEnabled())
	l.SetQuietEnabled(false)
	assert.False(t, l.IsQuietEnabled())
}
