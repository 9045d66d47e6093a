package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/settings"
	"github.com/chetch/services/util/servicemanager"
	"github.com/chetch/services/util/test/mocklogger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostContext(values map[string]interface{}) *servicemanager.HostContext {
	return &servicemanager.HostContext{
		Identity: servicemanager.Identity{ServiceName: "Chetch"},
		Settings: settings.NewSettings(settings.NewConfig(values, settings.WithoutEnv())),
		Logger:   mocklogger.NewTestLogger(),
	}
}

func TestHeartbeatBeatsUntilCancelled(t *testing.T) {
	unit, err := New(hostContext(map[string]interface{}{
		"Heartbeat": map[string]interface{}{"Interval": "5ms"},
	}))
	require.NoError(t, err)

	hb, ok := unit.(*Heartbeat)
	require.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, hb.interval)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- hb.Execute(ctx)
	}()

	require.Eventually(t, func() bool { return hb.Beats() >= 3 }, 5*time.Second, time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("heartbeat did not stop")
	}
}

func TestHeartbeatDefaultInterval(t *testing.T) {
	unit, err := New(hostContext(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultInterval, unit.(*Heartbeat).interval)
}

func TestHeartbeatRejectsNonPositiveInterval(t *testing.T) {
	_, err := New(hostContext(map[string]interface{}{
		"Heartbeat": map[string]interface{}{"Interval": "-1s"},
	}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestHeartbeatCountsBeats(t *testing.T) {
	unit, err := New(hostContext(nil))
	require.NoError(t, err)

	hb := unit.(*Heartbeat)
	before := testutil.ToFloat64(prometheusHeartbeats)

	hb.beat(context.Background(), time.Now())
	hb.beat(context.Background(), time.Now())

	assert.Equal(t, uint64(2), hb.Beats())
	assert.InDelta(t, before+2, testutil.ToFloat64(prometheusHeartbeats), 0)
}
