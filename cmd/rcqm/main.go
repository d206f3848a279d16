// main is the entry point of the rcqm CLI.
package main

import (
	"os"

	"github.com/huangsam/rcqm/cmd"
	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/iocache"
)

// main runs the selected command and exits with the aggregated metric status.
func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
	os.Exit(int(cmd.ExitStatus()))
}
