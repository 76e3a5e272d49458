package emulator

import (
	"bufio"
	"io"
	"math/rand"
)

// StdioPort is the %TEXT port backing: reads one byte at a time from In,
// writes one byte at a time (masked to 8 bits) to Out.
type StdioPort struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewStdioPort wraps r/w with the buffering Read needs to pull a single
// byte at a time without over-reading.
func NewStdioPort(r io.Reader, w io.Writer) *StdioPort {
	return &StdioPort{In: bufio.NewReader(r), Out: w}
}

func (p *StdioPort) Read(e *Emulator) uint64 {
	b, err := p.In.ReadByte()
	if err != nil {
		return 0
	}
	return uint64(b)
}

func (p *StdioPort) Write(e *Emulator, value uint64) {
	p.Out.Write([]byte{byte(value & 0xFF)})
}

// RandomPort is the %RAND port: reads return a uniform value in
// [0, BitMask()]; writes are discarded.
type RandomPort struct {
	rng *rand.Rand
}

// NewRandomPort builds a RandomPort seeded from src. The spec explicitly
// leaves RNG determinism unspecified (see Non-goals), so callers choose
// their own source -- math/rand.NewSource(time.Now().UnixNano()) for normal
// runs, a fixed seed for reproducible test fixtures.
func NewRandomPort(src rand.Source) *RandomPort {
	return &RandomPort{rng: rand.New(src)}
}

func (p *RandomPort) Read(e *Emulator) uint64 {
	mask := e.BitMask()
	if mask == 0 {
		return 0
	}
	return p.rng.Uint64() % (mask + 1)
}

func (p *RandomPort) Write(e *Emulator, value uint64) {}

var (
	_ Port = (*StdioPort)(nil)
	_ Port = (*RandomPort)(nil)
)
