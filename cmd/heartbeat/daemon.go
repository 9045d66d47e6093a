package heartbeat

import (
	"fmt"
	"os"

	"github.com/chetch/services/daemon"
	"github.com/ordishs/gocore"
)

// RunDaemon runs the heartbeat service with the process arguments and exits non-zero when the
// host fails.
func RunDaemon(progname, version, commit string) {
	gocore.SetInfo(progname, version, commit)

	d := daemon.New(daemon.WithProgname(progname))

	if err := d.Run(os.Args[1:], New); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progname, err)
		os.Exit(1)
	}
}
