// Package main is the entry point for the convostat CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/convostat/cmd"
	"github.com/danielolaszy/convostat/internal/logging"
)

// main executes the root command and exits non-zero when it fails.
func main() {
	logging.Debug("starting convostat", "version", "1.0.0", "log_level", logging.LevelFromEnv())

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
