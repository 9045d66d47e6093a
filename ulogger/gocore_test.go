package ulogger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsGoCoreLogger(t *testing.T) {
	logger := New("gocore-test", WithLoggerType("gocore"), WithLevel("WARN"))

	g, ok := logger.(*GoCoreLogger)
	require.True(t, ok)
	assert.Equal(t, int(gocore.WARN), g.LogLevel())
}

func TestGoCoreLoggerHostingLevelNames(t *testing.T) {
	tests := map[string]int{
		"Trace":       int(gocore.DEBUG),
		"Debug":       int(gocore.DEBUG),
		"Information": int(gocore.INFO),
		"Warning":     int(gocore.WARN),
		"Error":       int(gocore.ERROR),
		"Critical":    int(gocore.FATAL),
		"None":        int(gocore.PANIC),
		"WARN":        int(gocore.WARN),
	}

	for name, expected := range tests {
		t.Run(name, func(t *testing.T) {
			g := NewGoCoreLogger("gocore-levels", WithLevel(name))
			assert.Equal(t, expected, g.LogLevel())
		})
	}
}

func goCoreEntries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		entries = append(entries, entry)
	}

	return entries
}

func TestGoCoreLoggerForwardsToSinks(t *testing.T) {
	var sink bytes.Buffer

	logger := New("gocore-sink", WithLoggerType("gocore"), WithLevel("Warning"), WithSink(&sink))

	logger.Infof("below threshold")
	logger.Errorf("Exception: %s", "boom")
	logger.Duplicate(WithEventID(100)).Warnf("Service cancelled at: %s", "t1")

	entries := goCoreEntries(t, &sink)
	require.Len(t, entries, 2)

	assert.Equal(t, "error", entries[0][zerolog.LevelFieldName])
	assert.Equal(t, "Exception: boom", entries[0][zerolog.MessageFieldName])
	assert.Equal(t, "gocore-sink", entries[0][ServiceFieldName])
	assert.NotContains(t, entries[0], EventIDFieldName)

	assert.Equal(t, "warn", entries[1][zerolog.LevelFieldName])
	assert.Equal(t, "Service cancelled at: t1", entries[1][zerolog.MessageFieldName])
	assert.InDelta(t, 100, entries[1][EventIDFieldName], 0)
}

func TestGoCoreLoggerForwardsToWriter(t *testing.T) {
	var buf bytes.Buffer

	g := NewGoCoreLogger("gocore-writer", WithWriter(&buf))
	g.Infof("hello %d", 1)

	entries := goCoreEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello 1", entries[0][zerolog.MessageFieldName])

	assert.Nil(t, NewGoCoreLogger("gocore-writer").forward)
}

func TestGoCoreLoggerSetLogLevel(t *testing.T) {
	var sink bytes.Buffer

	g := NewGoCoreLogger("gocore-set", WithLevel("Error"), WithSink(&sink))
	g.Warnf("dropped")
	assert.Zero(t, sink.Len())

	g.SetLogLevel("Debug")
	assert.Equal(t, int(gocore.DEBUG), g.LogLevel())

	g.Debugf("kept")
	require.Len(t, goCoreEntries(t, &sink), 1)

	child, ok := g.New("gocore-child").(*GoCoreLogger)
	require.True(t, ok)
	assert.Equal(t, int(gocore.DEBUG), child.LogLevel())
	assert.Equal(t, "gocore-child", child.service)
}

func TestGoCoreLoggerDuplicate(t *testing.T) {
	g := NewGoCoreLogger("gocore-dup", WithSkipFrame(1))

	dup, ok := g.Duplicate(WithEventID(100)).(*GoCoreLogger)
	require.True(t, ok)

	assert.Equal(t, 100, dup.eventID)
	assert.Equal(t, 1, dup.skipFrame)
	assert.Equal(t, 0, g.eventID)
	assert.Same(t, g.Logger, dup.Logger)

	assert.Equal(t, "[100] started", dup.prefix("started"))
	assert.Equal(t, "started", g.prefix("started"))
}

func TestZeroLoggerLogLevelMapsToGoCore(t *testing.T) {
	z := NewZeroLogger("levels", WithLevel("Error"))
	assert.Equal(t, int(gocore.ERROR), z.LogLevel())

	z.SetLogLevel("Debug")
	assert.Equal(t, int(gocore.DEBUG), z.LogLevel())
}
