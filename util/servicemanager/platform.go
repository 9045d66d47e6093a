package servicemanager

import (
	"runtime"
)

// IsWindows is the platform probe used to decide whether the Windows event log and service
// control manager integrations are registered.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
