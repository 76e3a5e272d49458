package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/urcl-project/urclvm/internal/config"
	"github.com/urcl-project/urclvm/internal/urclrun"
	"github.com/urcl-project/urclvm/pkg/debugger"
	"github.com/urcl-project/urclvm/pkg/emulator"
)

func newDebugCmd() *cobra.Command {
	var breakpoints []int
	cmd := &cobra.Command{
		Use:   "debug <file.urcl>",
		Short: "Drive the debug-controller protocol headlessly, printing break snapshots as JSON lines",
		Long: "debug runs the same break/step/resume protocol the urcldbg TUI drives, but " +
			"prints each break snapshot as one JSON line to stdout and reads step/over/out/" +
			"continue commands as single words, and break <line>/unbreak <line>, from stdin " +
			"-- useful for scripting or for a " +
			"front end other than urcldbg.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := entryLogger()
			sessionID := uuid.New()
			log = log.WithField("session", sessionID.String())

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

			encoder := json.NewEncoder(os.Stdout)
			dbg.Start()

			go func() {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					fields := strings.Fields(scanner.Text())
					if len(fields) == 0 {
						continue
					}
					switch fields[0] {
					case "step":
						dbg.Step()
					case "over":
						dbg.StepOver()
					case "out":
						dbg.StepOut()
					case "continue", "resume":
						dbg.FlushBreakpoints()
						dbg.Resume()
					case "break":
						if len(fields) < 2 {
							continue
						}
						if line, err := strconv.Atoi(fields[1]); err == nil {
							dbg.AddBreakpoint(line)
						}
					case "unbreak":
						if len(fields) < 2 {
							continue
						}
						if line, err := strconv.Atoi(fields[1]); err == nil {
							dbg.RemoveBreakpoint(line)
						}
					}
				}
			}()

			for event := range dbg.Events() {
				switch {
				case event.Open != nil:
					encoder.Encode(event.Open)
				case event.Closed:
					encoder.Encode(map[string]bool{"closed": true})
				case event.Output != "":
					fmt.Fprint(os.Stdout, event.Output)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVarP(&breakpoints, "break", "b", nil, "one-based source line to break at (repeatable)")
	return cmd
}
