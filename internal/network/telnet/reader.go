package telnet

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Initialize prepares the engine for use. It must run once per process before
// any Connection is opened; later calls do nothing.
func Initialize(logger *slog.Logger) {
	initOnce.Do(func() {
		initialized.Store(true)
		if logger != nil {
			logger.Debug("Telnet engine initialized", "policy", len(DefaultPolicy))
		}
	})
}

// readLoop is the connection's only reader. It exits when the socket fails or
// when stopReader asks it to.
func (c *Connection) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)
	defer c.tracker.abort()

	buf := make([]byte, c.opts.ReadBufferSize)
	var out []byte

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			c.decoder.SetBinary(c.binary.Load())

			var retract int
			out, retract = c.decoder.Decode(out[:0], buf[:n])
			if retract > 0 && c.queue.retract(retract) < retract {
				c.logger.Debug("Telnet IAC already consumed as data", "count", retract)
			}
			c.queue.push(c.tracker.filter(out))
		}

		if err == nil {
			continue
		}
		if c.stopping.Load() {
			return
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			// A deadline someone else set; the connection is still fine,
			// but a deadline left in the past would fail every Read.
			_ = conn.SetReadDeadline(time.Time{})
			continue
		}
		if !errors.Is(err, io.EOF) {
			c.logger.Debug("Telnet read failed", "addr", c.addr, "err", err)
		}
		c.eof.Store(true)
		c.queue.close()
		return
	}
}
