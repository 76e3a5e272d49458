package emulator

import (
	"net"

	"github.com/sirupsen/logrus"
)

// TCPPort is a %TEXT port backed by a single TCP connection instead of the
// process's own stdin/stdout, so a console can attach remotely. Adapted
// from a serial-TTY console that accepted one controlling connection and
// shuttled bytes over it; this port does the same thing synchronously,
// matching the plain Read/Write shape every other Port implements rather
// than the original's own interrupt-pending poll loop.
type TCPPort struct {
	conn net.Conn
	log  *logrus.Entry
}

// ListenTCPPort waits for a single controlling TCP connection on addr (an
// ephemeral port if addr is ""), then returns a Port that reads and writes
// one byte at a time over it. Blocks until a client connects.
func ListenTCPPort(addr string, log *logrus.Entry) (*TCPPort, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	nl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	log.WithField("addr", nl.Addr()).Info("waiting for console to attach")
	conn, err := nl.Accept()
	if err != nil {
		return nil, err
	}
	return &TCPPort{conn: conn, log: log}, nil
}

// LocalAddr returns the address the port accepted its connection on.
func (p *TCPPort) LocalAddr() net.Addr { return p.conn.LocalAddr() }

// Close closes the underlying connection.
func (p *TCPPort) Close() error { return p.conn.Close() }

// Read implements Port: one byte from the connection, 0 on any I/O error
// (mirroring the rest of this package's zero-on-miss conventions).
func (p *TCPPort) Read(e *Emulator) uint64 {
	var c [1]byte
	if _, err := p.conn.Read(c[:]); err != nil {
		p.log.WithError(err).Warn("tcp console read failed")
		return 0
	}
	return uint64(c[0])
}

// Write implements Port: one byte to the connection, masked to a byte.
func (p *TCPPort) Write(e *Emulator, value uint64) {
	c := [1]byte{byte(value & 0xFF)}
	if _, err := p.conn.Write(c[:]); err != nil {
		p.log.WithError(err).Warn("tcp console write failed")
	}
}

var _ Port = (*TCPPort)(nil)
