// Command urcl runs and checks URCL source files from the terminal: run
// executes a program against stdio, check only reports parser diagnostics,
// and debug drives the same debug-controller protocol the urcldbg TUI
// uses, printing break snapshots as they occur instead of rendering them.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	bits       uint
	verbose    bool
	log        = logrus.New()
)

func main() {
	root := &cobra.Command{
		Use:   "urcl",
		Short: "Run, check and debug URCL programs",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "session config file (TOML)")
	root.PersistentFlags().UintVar(&bits, "bits", 0, "integer width override, 1-63 (0 = use config/default)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	root.AddCommand(newRunCmd(), newCheckCmd(), newDebugCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func entryLogger() *logrus.Entry {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(log)
}
