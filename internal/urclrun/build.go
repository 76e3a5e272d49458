// Package urclrun assembles the pieces both cmd/urcl and cmd/urcldbg need:
// parse a source file, report its diagnostics, and build an
// emulator.Emulator with its standard ports wired in.
package urclrun

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/urcl-project/urclvm/internal/config"
	"github.com/urcl-project/urclvm/pkg/emulator"
	"github.com/urcl-project/urclvm/pkg/parser"
)

// Build parses the source file at path and, if it parsed without errors,
// compiles it onto a fresh Emulator seeded from session. A non-nil
// attachText is called to attach the TEXT port; when attachText is nil,
// TEXT is backed by stdin/stdout, or by a TCP connection when
// session.Console is "tcp".
func Build(path string, session config.Session, log *logrus.Entry, attachText func(*emulator.Emulator)) (*emulator.Emulator, *parser.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("urclrun: %w", err)
	}

	result := parser.Parse(string(data), path)
	for _, w := range result.Warnings {
		log.Warn(w.String())
	}
	if !result.Ok() {
		for _, e := range result.Errors {
			log.Error(e.String())
		}
		return nil, result, fmt.Errorf("urclrun: %s has %d error(s)", path, len(result.Errors))
	}

	machine, err := emulator.New(session.Bits, log)
	if err != nil {
		return nil, result, err
	}
	switch {
	case attachText != nil:
		attachText(machine)
	case session.Console == "tcp":
		port, err := emulator.ListenTCPPort(session.ConsoleAddr, log)
		if err != nil {
			return nil, result, fmt.Errorf("urclrun: %w", err)
		}
		machine.AddPort("TEXT", port)
	default:
		machine.AddPort("TEXT", emulator.NewStdioPort(os.Stdin, os.Stdout))
	}
	machine.AddPort("RAND", emulator.NewRandomPort(rand.NewSource(time.Now().UnixNano())))
	for _, name := range session.Ports {
		if name == "TEXT" || name == "RAND" {
			continue
		}
		machine.AddPort(name, emulator.NewStdioPort(os.Stdin, os.Stdout))
	}

	if err := machine.LoadProgram(result.Program); err != nil {
		return nil, result, err
	}
	for name, address := range result.Labels {
		machine.AddLabel(uint64(address), name)
	}
	return machine, result, nil
}
