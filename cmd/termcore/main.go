package main

import (
	"os"

	"github.com/andyrewlee/termcore/internal/cli"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], cli.BuildInfo{Version: version, Commit: commit, Date: date}))
}
