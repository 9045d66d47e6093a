package main

import (
	"github.com/chetch/services/cmd/heartbeat"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "chetch"

// Version & commit strings injected at build with -ldflags -X...
var version string
var commit string

func main() {
	heartbeat.RunDaemon(progname, version, commit)
}
