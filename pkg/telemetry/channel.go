package telemetry

import (
	"os"
	"sync/atomic"

	"github.com/tevino/abool"
	"golang.org/x/sys/unix"
)

// EnvSocket names the unix socket the sandbox monitor listens on. When it
// is unset, telemetry is disabled and every send is a silent no-op.
const EnvSocket = "SANDBOX_SOCKET"

// Channel is a best-effort, one-way transport to the sandbox monitor.
// Establishment happens at most once per process lifetime; a failed
// attempt is sticky until Reset. All methods are safe for concurrent use
// and none of them blocks.
type Channel struct {
	settled *abool.AtomicBool
	fd      atomic.Int32
}

// NewChannel returns an unconnected channel.
func NewChannel() *Channel {
	c := &Channel{settled: abool.New()}
	c.fd.Store(-1)
	return c
}

// EnsureConnected attempts establishment exactly once. Redundant calls,
// including concurrent ones, return immediately; a concurrent caller that
// loses the race may see the channel as unconnected while the winner is
// still dialing, which only costs a dropped event.
func (c *Channel) EnsureConnected() {
	if !c.settled.SetToIf(false, true) {
		return
	}

	path := os.Getenv(EnvSocket)
	if path == "" {
		return
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return
	}

	unix.SetNonblock(fd, true)
	c.fd.Store(int32(fd))
}

// Send writes one full record without blocking. Every error, including
// would-block, is discarded: no retry, no queueing, no partial-write
// recovery.
func (c *Channel) Send(line []byte) {
	c.EnsureConnected()
	fd := int(c.fd.Load())
	if fd < 0 {
		return
	}
	_ = unix.Send(fd, line, unix.MSG_DONTWAIT|unix.MSG_NOSIGNAL)
}

// Emit encodes one event and sends it. Oversized records are dropped
// whole, so nothing partial ever reaches the wire.
func (c *Channel) Emit(typ Type, function, cmd string) {
	// A telemetry failure must never reach the intercepted caller.
	defer func() { _ = recover() }()
	line, ok := (Event{Type: typ, Function: function, Cmd: cmd}).Encode()
	if !ok {
		return
	}
	c.Send(line)
}

// Reset discards the channel state without closing the descriptor. Meant
// for the child branch of a fork, where the descriptor is inherited from
// the parent and must not be closed or reused by this process.
func (c *Channel) Reset() {
	c.fd.Store(-1)
	c.settled.UnSet()
}

// Close releases the descriptor if connected. The settled flag stays set,
// so a closed channel never reconnects.
func (c *Channel) Close() error {
	if fd := c.fd.Swap(-1); fd >= 0 {
		return unix.Close(int(fd))
	}
	return nil
}

// The process-wide channel used by the interception table.
var std = NewChannel()

// Bootstrap eagerly attempts establishment of the process channel. Called
// from the sentinel load hook; calling it again is a no-op.
func Bootstrap() {
	std.EnsureConnected()
}

// Emit sends one event on the process channel, best effort.
func Emit(typ Type, function, cmd string) {
	std.Emit(typ, function, cmd)
}

// Reset returns the process channel to its unestablished state. See
// (*Channel).Reset for when this is required.
func Reset() {
	std.Reset()
}

// Shutdown closes the process channel. Called from the sentinel unload
// hook.
func Shutdown() error {
	return std.Close()
}
