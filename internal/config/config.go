// Package config loads the TOML session file that seeds an emulator's
// integer width and enabled ports, the way the teacher's binaries take
// their settings from command-line flags but generalized here to a file a
// session can share across the run/check/debug subcommands.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultBits is the integer width a Session uses when no file overrides
// it: the widest value this port supports (see DESIGN.md on the 63-bit
// cap).
const DefaultBits = 63

// Session describes one emulator configuration.
type Session struct {
	// Bits is the initial integer_mask width, in [1,63]. BITS n at runtime
	// overrides this for the remainder of execution.
	Bits uint `toml:"bits"`
	// Ports lists additional port names the session wants pre-declared
	// beyond the always-present TEXT and RAND. A URCL program may still
	// reference a port not listed here; loading the program then fails with
	// an unknown-port compile error.
	Ports []string `toml:"ports"`
	// Console selects the TEXT port's backing transport: "stdio" (default)
	// or "tcp". ConsoleAddr is the listen address when Console is "tcp";
	// "" picks an ephemeral loopback port.
	Console     string `toml:"console"`
	ConsoleAddr string `toml:"console_addr"`
}

// Default returns the zero-config Session: 63-bit words, no extra ports.
func Default() Session {
	return Session{Bits: DefaultBits}
}

// Load reads a Session from a TOML file at path. Missing fields keep
// Default's values.
func Load(path string) (Session, error) {
	session := Default()
	if path == "" {
		return session, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return session, err
	}
	if _, err := toml.Decode(string(data), &session); err != nil {
		return session, err
	}
	if session.Bits == 0 {
		session.Bits = DefaultBits
	}
	return session, nil
}
