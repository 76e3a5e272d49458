package main

import (
	"github.com/spf13/cobra"

	"github.com/urcl-project/urclvm/internal/config"
	"github.com/urcl-project/urclvm/internal/urclrun"
)

func newRunCmd() *cobra.Command {
	var console string
	var consoleAddr string
	cmd := &cobra.Command{
		Use:   "run <file.urcl>",
		Short: "Execute a URCL program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := entryLogger()
			session, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if bits != 0 {
				session.Bits = bits
			}
			if console != "" {
				session.Console = console
			}
			if consoleAddr != "" {
				session.ConsoleAddr = consoleAddr
			}
			machine, _, err := urclrun.Build(args[0], session, log, nil)
			if err != nil {
				return err
			}
			machine.Execute()
			return nil
		},
	}
	cmd.Flags().StringVar(&console, "console", "", `TEXT port transport: "stdio" (default) or "tcp"`)
	cmd.Flags().StringVar(&consoleAddr, "console-addr", "", `listen address when --console=tcp (default an ephemeral loopback port)`)
	return cmd
}
