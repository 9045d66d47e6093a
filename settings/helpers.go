package settings

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

func getString(c *Config, key, defaultValue string) string {
	value, found := c.GetString(key)
	if !found || value == "" {
		return defaultValue
	}

	return value
}

func getInt(c *Config, key string, defaultValue int) int {
	value, found := c.GetInt(key)
	if !found {
		return defaultValue
	}

	return value
}

func getBool(c *Config, key string, defaultValue bool) bool {
	value, found := c.GetBool(key)
	if !found {
		return defaultValue
	}

	return value
}

func getFloat64(c *Config, key string, defaultValue float64) float64 {
	value, found := c.GetFloat64(key)
	if !found {
		return defaultValue
	}

	return value
}

// getDuration accepts Go duration strings ("30s", "1m30s"), .NET style timespans ("00:00:30")
// and plain numbers, which are read as seconds.
func getDuration(c *Config, key string, defaultValue time.Duration) time.Duration {
	if !c.IsSet(key) {
		return defaultValue
	}

	switch value := c.Get(key).(type) {
	case string:
		return parseDuration(value, defaultValue)
	default:
		seconds, err := cast.ToFloat64E(value)
		if err != nil {
			return defaultValue
		}

		return time.Duration(seconds * float64(time.Second))
	}
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return defaultValue
	}

	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	seconds, errS := strconv.ParseFloat(parts[2], 64)

	if errH != nil || errM != nil || errS != nil {
		return defaultValue
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
}
