package settings

import (
	"time"
)

// Configuration paths understood by NewSettings.
const (
	KeyEventLogSourceName        = "Logging:EventLog:SourceName"
	KeyEventLogLevel             = "Logging:EventLog:LogLevel:Default"
	KeyLogLevel                  = "Logging:LogLevel:Default"
	KeyLoggerType                = "Logging:Type"
	KeyPrettyLogs                = "Logging:Console:Pretty"
	KeyTracingLevel              = "Tracing:Level"
	KeyTracingOtlpEndpoint       = "Tracing:Otlp:Endpoint"
	KeyTracingSampleRate         = "Tracing:Otlp:SampleRate"
	KeyShutdownTimeout           = "Host:ShutdownTimeout"
	KeyServicesStartConcurrently = "Host:ServicesStartConcurrently"
	KeyServicesStopConcurrently  = "Host:ServicesStopConcurrently"
	KeyMetricsListenAddress      = "Metrics:ListenAddress"
	KeyMetricsPath               = "Metrics:Path"
	KeyMetricsListenRetries      = "Metrics:ListenRetries"
	KeyMetricsListenBackoff      = "Metrics:ListenBackoff"
	KeyMetricsProfiling          = "Metrics:Profiling"
)

// DefaultServiceName is used when Logging:EventLog:SourceName is absent or empty.
const DefaultServiceName = "Chetch"

func NewSettings(c *Config) *Settings {
	return &Settings{
		ServiceName: getString(c, KeyEventLogSourceName, DefaultServiceName),
		Logging: LoggingSettings{
			Level:      getString(c, KeyLogLevel, "Information"),
			Type:       getString(c, KeyLoggerType, "zerolog"),
			PrettyLogs: getBool(c, KeyPrettyLogs, true),
			EventLog: EventLogSettings{
				SourceName: getString(c, KeyEventLogSourceName, DefaultServiceName),
				Level:      getString(c, KeyEventLogLevel, "Warning"),
			},
		},
		Tracing: TracingSettings{
			Level:        getString(c, KeyTracingLevel, ""),
			OtlpEndpoint: getString(c, KeyTracingOtlpEndpoint, ""),
			SampleRate:   getFloat64(c, KeyTracingSampleRate, 1.0),
		},
		Host: HostSettings{
			ShutdownTimeout:           getDuration(c, KeyShutdownTimeout, 30*time.Second),
			ServicesStartConcurrently: getBool(c, KeyServicesStartConcurrently, false),
			ServicesStopConcurrently:  getBool(c, KeyServicesStopConcurrently, false),
		},
		Metrics: MetricsSettings{
			ListenAddress: getString(c, KeyMetricsListenAddress, ""),
			Path:          getString(c, KeyMetricsPath, "/metrics"),
			ListenRetries: getInt(c, KeyMetricsListenRetries, 3),
			ListenBackoff: getDuration(c, KeyMetricsListenBackoff, 250*time.Millisecond),
			Profiling:     getBool(c, KeyMetricsProfiling, false),
		},
		config: c,
	}
}

// Config returns the configuration the settings were read from, for keys owned by individual
// services.
func (s *Settings) Config() *Config {
	return s.config
}

func (s *Settings) GetString(key, defaultValue string) string {
	if s.config == nil {
		return defaultValue
	}

	return getString(s.config, key, defaultValue)
}

func (s *Settings) GetInt(key string, defaultValue int) int {
	if s.config == nil {
		return defaultValue
	}

	return getInt(s.config, key, defaultValue)
}

func (s *Settings) GetBool(key string, defaultValue bool) bool {
	if s.config == nil {
		return defaultValue
	}

	return getBool(s.config, key, defaultValue)
}

func (s *Settings) GetDuration(key string, defaultValue time.Duration) time.Duration {
	if s.config == nil {
		return defaultValue
	}

	return getDuration(s.config, key, defaultValue)
}
