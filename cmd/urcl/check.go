package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urcl-project/urclvm/pkg/parser"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.urcl>",
		Short: "Parse a URCL program and report diagnostics without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(args[0])
			if err != nil {
				return err
			}
			result := parser.Parse(data, args[0])
			for _, w := range result.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
			for _, e := range result.Errors {
				fmt.Printf("error: %s\n", e)
			}
			if !result.Ok() {
				return fmt.Errorf("%d error(s)", len(result.Errors))
			}
			fmt.Printf("ok: %d instruction(s), %d label(s)\n", len(result.Program), len(result.Labels))
			return nil
		},
	}
}
