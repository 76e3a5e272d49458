// Command urcldbg is an interactive terminal debugger for URCL programs,
// built on bubbletea the way this project's ambient stack uses it for
// every other interactive surface. It drives the same debug-controller
// protocol (pkg/debugger) that `urcl debug` exposes headlessly.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/urcl-project/urclvm/internal/config"
	"github.com/urcl-project/urclvm/internal/urclrun"
	"github.com/urcl-project/urclvm/pkg/debugger"
	"github.com/urcl-project/urclvm/pkg/emulator"
)

func main() {
	var configPath string
	var bits uint
	var breakpoints []int

	root := &cobra.Command{
		Use:   "urcldbg <file.urcl>",
		Short: "Interactively debug a URCL program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.NewEntry(logrus.StandardLogger())

			session, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if bits != 0 {
				session.Bits = bits
			}

			var dbg *debugger.Debugger
			machine, _, err := urclrun.Build(args[0], session, log, func(m *emulator.Emulator) {
				dbg = debugger.New(m)
				m.AddPort("TEXT", debugger.NewTextPort(dbg))
			})
			if err != nil {
				return err
			}
			for _, line := range breakpoints {
				machine.SetBreakpoint(line)
			}
			machine.SetGopoint(0)

			model := newModel(dbg, args[0])
			program := tea.NewProgram(model, tea.WithAltScreen())
			dbg.Start()
			_, err = program.Run()
			return err
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "session config file (TOML)")
	root.Flags().UintVar(&bits, "bits", 0, "integer width override, 1-63")
	root.Flags().IntSliceVarP(&breakpoints, "break", "b", nil, "one-based source line to break at (repeatable)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
