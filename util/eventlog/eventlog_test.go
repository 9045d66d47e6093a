package eventlog

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/ulogger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventlog struct {
	events []string
	closed bool
}

func (f *fakeEventlog) record(kind string, id uint32, msg string) error {
	f.events = append(f.events, fmt.Sprintf("%s/%d/%s", kind, id, msg))
	return nil
}

func (f *fakeEventlog) Info(id uint32, msg string) error    { return f.record("info", id, msg) }
func (f *fakeEventlog) Warning(id uint32, msg string) error { return f.record("warning", id, msg) }
func (f *fakeEventlog) Error(id uint32, msg string) error   { return f.record("error", id, msg) }
func (f *fakeEventlog) Close() error                        { f.closed = true; return nil }

func TestSinkWrite(t *testing.T) {
	evt := &fakeEventlog{}
	sink := NewSink(evt, "Information")

	n, err := sink.Write([]byte(`{"level":"info","event_id":10,"message":"Starting service at: now"}`))
	require.NoError(t, err)
	assert.Equal(t, 67, n)

	_, _ = sink.Write([]byte(`{"level":"warn","event_id":100,"message":"Service cancelled at: now"}`))
	_, _ = sink.Write([]byte(`{"level":"error","message":"Exception: boom"}`))
	_, _ = sink.Write([]byte(`{"level":"debug","message":"ignored"}`))
	_, _ = sink.Write([]byte(`not json`))

	assert.Equal(t, []string{
		"info/10/Starting service at: now",
		"warning/100/Service cancelled at: now",
		"error/0/Exception: boom",
	}, evt.events)

	require.NoError(t, sink.Close())
	assert.True(t, evt.closed)
}

func TestSinkDefaultThresholdIsWarning(t *testing.T) {
	evt := &fakeEventlog{}
	sink := NewSink(evt, "Warning")

	_, _ = sink.WriteLevel(zerolog.InfoLevel, []byte(`{"message":"info"}`))
	_, _ = sink.WriteLevel(zerolog.WarnLevel, []byte(`{"message":"warn","event_id":100}`))
	_, _ = sink.WriteLevel(zerolog.FatalLevel, []byte(`{"message":"fatal"}`))

	assert.Equal(t, []string{"warning/100/warn", "error/0/fatal"}, evt.events)
}

func TestSinkNoneDisables(t *testing.T) {
	evt := &fakeEventlog{}
	sink := NewSink(evt, "None")

	_, _ = sink.WriteLevel(zerolog.ErrorLevel, []byte(`{"message":"error"}`))
	assert.Empty(t, evt.events)
}

func TestSinkAsLoggerSink(t *testing.T) {
	evt := &fakeEventlog{}

	var console bytes.Buffer

	logger := ulogger.New("Chetch",
		ulogger.WithWriter(&console),
		ulogger.WithSink(NewSink(evt, "Warning")),
	)

	logger.Duplicate(ulogger.WithEventID(10)).Infof("Starting service at: %s", "t0")
	logger.Duplicate(ulogger.WithEventID(100)).Warnf("Service cancelled at: %s", "t1")
	logger.Errorf("Exception: %s", "boom")

	assert.Equal(t, []string{
		"warning/100/Service cancelled at: t1",
		"error/0/Exception: boom",
	}, evt.events)
	assert.Contains(t, console.String(), "Starting service at: t0")
}

func TestSinkBehindGoCoreLogger(t *testing.T) {
	evt := &fakeEventlog{}

	logger := ulogger.New("Chetch",
		ulogger.WithLoggerType("gocore"),
		ulogger.WithLevel("Information"),
		ulogger.WithSink(NewSink(evt, "Warning")),
	)

	logger.Duplicate(ulogger.WithEventID(10)).Infof("Starting service at: %s", "t0")
	logger.Duplicate(ulogger.WithEventID(100)).Warnf("Service cancelled at: %s", "t1")
	logger.Errorf("Exception: %s", "boom")

	assert.Equal(t, []string{
		"warning/100/Service cancelled at: t1",
		"error/0/Exception: boom",
	}, evt.events)
}

func TestOpen(t *testing.T) {
	if Supported() {
		t.Skip("opening the real event log needs an installed source")
	}

	sink, err := Open("Chetch", "Warning")
	require.Error(t, err)
	assert.Nil(t, sink)
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}
