package settings

import (
	"os"
	"strings"

	"github.com/chetch/services/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// KeyDelimiter separates the sections of a configuration path, as in Logging:EventLog:SourceName.
const KeyDelimiter = ":"

// EnvKeyDelimiter replaces KeyDelimiter in environment variable names,
// so Logging:EventLog:SourceName is overridden by LOGGING__EVENTLOG__SOURCENAME.
const EnvKeyDelimiter = "__"

// Config is a read-mostly view of a JSON configuration file with environment overrides.
// Lookups are case-insensitive.
type Config struct {
	viper *viper.Viper
	file  string
}

type loadOptions struct {
	dotEnvFile string
	envPrefix  string
	noEnv      bool
}

type LoadOption func(*loadOptions)

// WithDotEnv loads the given dotenv file into the process environment before reading the
// configuration. A missing file is ignored. Variables already set are not overridden.
func WithDotEnv(filename string) LoadOption {
	return func(o *loadOptions) {
		o.dotEnvFile = filename
	}
}

// WithEnvPrefix only lets environment variables starting with PREFIX_ override the file.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithoutEnv disables environment overrides.
func WithoutEnv() LoadOption {
	return func(o *loadOptions) {
		o.noEnv = true
	}
}

func newViper(o *loadOptions) *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))

	if !o.noEnv {
		if o.envPrefix != "" {
			v.SetEnvPrefix(o.envPrefix)
		}

		v.SetEnvKeyReplacer(strings.NewReplacer(KeyDelimiter, EnvKeyDelimiter))
		v.AutomaticEnv()
	}

	return v
}

// Load reads filename. A missing or malformed file is an ERR_CONFIGURATION error.
func Load(filename string, opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.dotEnvFile != "" {
		if _, err := os.Stat(o.dotEnvFile); err == nil {
			if err := godotenv.Load(o.dotEnvFile); err != nil {
				return nil, errors.NewConfigurationError("failed to load dotenv file %s", o.dotEnvFile, err)
			}
		}
	}

	v := newViper(o)
	v.SetConfigFile(filename)

	if strings.HasSuffix(strings.ToLower(filename), ".json") || !strings.Contains(filename, ".") {
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigurationError("failed to load configuration file %s", filename, err)
	}

	return &Config{viper: v, file: filename}, nil
}

// NewConfig builds a Config from in-memory values. Nested maps become sections.
func NewConfig(values map[string]interface{}, opts ...LoadOption) *Config {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := newViper(o)

	for key, value := range values {
		v.Set(key, value)
	}

	return &Config{viper: v}
}

// File is the path the configuration was read from, empty for in-memory configurations.
func (c *Config) File() string {
	return c.file
}

func (c *Config) IsSet(key string) bool {
	return c.viper.IsSet(key)
}

func (c *Config) Get(key string) interface{} {
	return c.viper.Get(key)
}

// GetString returns the value at key and whether it was present.
func (c *Config) GetString(key string) (string, bool) {
	if !c.viper.IsSet(key) {
		return "", false
	}

	return c.viper.GetString(key), true
}

func (c *Config) GetBool(key string) (bool, bool) {
	if !c.viper.IsSet(key) {
		return false, false
	}

	return c.viper.GetBool(key), true
}

func (c *Config) GetInt(key string) (int, bool) {
	if !c.viper.IsSet(key) {
		return 0, false
	}

	return c.viper.GetInt(key), true
}

func (c *Config) GetFloat64(key string) (float64, bool) {
	if !c.viper.IsSet(key) {
		return 0, false
	}

	return c.viper.GetFloat64(key), true
}

// Set overrides key for the lifetime of the Config, above file and environment values.
func (c *Config) Set(key string, value interface{}) {
	c.viper.Set(key, value)
}

// ApplyOverrides applies Key:Path=value pairs, as given on the command line.
func (c *Config) ApplyOverrides(pairs []string) error {
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !found || key == "" {
			return errors.NewConfigurationError("invalid configuration override %q, expected Key=Value", pair)
		}

		c.Set(key, value)
	}

	return nil
}
