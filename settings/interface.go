package settings

import (
	"time"
)

type EventLogSettings struct {
	SourceName string
	Level      string
}

type LoggingSettings struct {
	Level      string
	Type       string
	PrettyLogs bool
	EventLog   EventLogSettings
}

type TracingSettings struct {
	Level        string
	OtlpEndpoint string
	SampleRate   float64
}

type HostSettings struct {
	ShutdownTimeout           time.Duration
	ServicesStartConcurrently bool
	ServicesStopConcurrently  bool
}

type MetricsSettings struct {
	ListenAddress string
	Path          string
	ListenRetries int
	ListenBackoff time.Duration
	Profiling     bool
}

type Settings struct {
	ServiceName string
	Logging     LoggingSettings
	Tracing     TracingSettings
	Host        HostSettings
	Metrics     MetricsSettings

	config *Config
}
