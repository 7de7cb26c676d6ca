package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFileLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileLogger(&buf)
	l.Infof("osd", "shown %d", 3)
	l.Debugf("osd", "hidden")
	assert.Contains(t, buf.String(), "[INFO] osd: shown 3\n")
	assert.NotContains(t, buf.String(), "hidden")

	l.Verbose = true
	l.Debugf("osd", "hidden")
	assert.Contains(t, buf.String(), "[DEBUG] osd: hidden\n")
}

func TestZapLoggerNamesComponent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core))

	l.Errorf("worker", "wait failed: %s", "closed")
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "worker", entries[0].LoggerName)
	assert.Equal(t, "wait failed: closed", entries[0].Message)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	l, err := New(Config{Level: "debug", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.NotNil(t, l.Zap())
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	assert.NotPanics(t, func() { l.Errorf("x", "%d", 1) })
}
