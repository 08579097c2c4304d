// Command pathreplay replays planar robot trajectories.
package main

import (
	"os"

	"github.com/banshee-data/pathreplay/internal/cli"
	"github.com/banshee-data/pathreplay/internal/monitoring"
)

func main() {
	err := cli.NewRootCommand().Execute()
	_ = monitoring.Logger().Sync()
	if err != nil {
		os.Exit(1)
	}
}
