package telnet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"nodebbs/internal/nodes"
)

var (
	ErrClosed         = errors.New("telnet: connection closed")
	ErrInvalidSocket  = errors.New("telnet: invalid socket")
	ErrNotInitialized = errors.New("telnet: engine not initialized")
)

const (
	DefaultReadBufferSize        = 4096
	DefaultScreenPositionTimeout = 2 * time.Second
	DefaultNegotiationTimeout    = 2 * time.Second
)

// Options control how a Connection treats its socket.
type Options struct {
	// Telnet enables IAC processing. When false the socket is a raw byte pipe.
	Telnet bool
	// Binary starts the connection in binary mode (RFC 856 escaping).
	Binary                bool
	ReadBufferSize        int
	ScreenPositionTimeout time.Duration
	// Policy overrides DefaultPolicy.
	Policy map[byte]OptionPolicy
}

type lifecycle int

const (
	lifeClosed lifecycle = iota
	lifeOpen
	lifeStopping
)

// Connection is the I/O engine for one remote terminal. A background reader
// decodes the socket into an input queue; writes go straight to the socket
// from the caller's goroutine.
type Connection struct {
	opts   Options
	logger *slog.Logger
	addr   net.Addr
	writer *Writer

	// Lifecycle; guarded by life.
	life  sync.Mutex
	conn  net.Conn
	state lifecycle
	done  chan struct{}

	closed   atomic.Bool // socket invalidated by Close
	eof      atomic.Bool // reader saw EOF or a socket error
	stopping atomic.Bool
	binary   atomic.Bool

	// Owned by the reader goroutine.
	decoder *Decoder

	queue   *inputQueue
	options *negotiator
	tracker positionTracker

	mu           sync.RWMutex
	terminalType string
	windowWidth  int
	windowHeight int
}

// NewConnection wraps conn. The reader is not started until Open.
func NewConnection(conn net.Conn, logger *slog.Logger, opts Options) *Connection {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = DefaultReadBufferSize
	}
	if opts.ScreenPositionTimeout <= 0 {
		opts.ScreenPositionTimeout = DefaultScreenPositionTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connection{
		opts:   opts,
		logger: logger,
		conn:   conn,
		writer: NewWriter(conn),
		queue:  newInputQueue(),
	}
	if conn != nil {
		c.addr = conn.RemoteAddr()
	} else {
		c.closed.Store(true)
	}
	c.binary.Store(opts.Binary)
	c.decoder = NewDecoder(opts.Telnet, c)
	c.options = newNegotiator(c.writer, logger, opts.Policy)
	return c
}

// Open starts the background reader. Calling Open on an open connection is a
// no-op.
func (c *Connection) Open() error {
	if !initialized.Load() {
		return ErrNotInitialized
	}

	c.life.Lock()
	defer c.life.Unlock()

	if c.conn == nil || c.closed.Load() {
		return ErrInvalidSocket
	}
	if c.eof.Load() {
		return fmt.Errorf("%w: peer disconnected", ErrInvalidSocket)
	}
	if c.state == lifeOpen {
		return nil
	}

	c.queue.reopen()
	c.done = make(chan struct{})
	c.state = lifeOpen
	go c.readLoop(c.conn, c.done)
	return nil
}

// Suspend stops the reader but keeps the socket, so it can be handed to
// another program and later resumed with Open.
func (c *Connection) Suspend() error {
	return c.shutdown(true)
}

// Close stops the reader and closes the socket. No bytes are queued after
// Close returns.
func (c *Connection) Close() error {
	return c.shutdown(false)
}

func (c *Connection) shutdown(temporary bool) error {
	c.life.Lock()
	defer c.life.Unlock()

	c.stopReader()
	if temporary || c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.closed.Store(true)
	c.queue.close()
	return err
}

// stopReader signals the reader and waits for it. Caller holds life.
func (c *Connection) stopReader() {
	if c.state != lifeOpen {
		return
	}
	c.state = lifeStopping
	c.stopping.Store(true)

	// Unblock the pending Read, and any negotiation reply the reader is
	// stuck writing to a peer that stopped reading.
	_ = c.conn.SetReadDeadline(time.Now())
	_ = c.conn.SetWriteDeadline(time.Now())
	<-c.done
	_ = c.conn.SetReadDeadline(time.Time{})
	_ = c.conn.SetWriteDeadline(time.Time{})

	c.stopping.Store(false)
	c.state = lifeClosed
}

// Connected reports whether the socket is valid and the reader has not seen
// the peer go away.
func (c *Connection) Connected() bool {
	return !c.closed.Load() && !c.eof.Load()
}

// Incoming reports whether decoded input is waiting.
func (c *Connection) Incoming() bool {
	return c.queue.len() > 0
}

// Buffered returns the number of decoded bytes waiting.
func (c *Connection) Buffered() int {
	return c.queue.len()
}

// GetW blocks until one decoded byte is available. Once the connection is
// gone and the queue is empty it returns io.EOF.
func (c *Connection) GetW() (byte, error) {
	b, ok := c.queue.pop()
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}

// Read blocks until input is available and then drains up to len(p) bytes.
func (c *Connection) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, ok := c.queue.read(p)
	if !ok {
		return 0, io.EOF
	}
	return n, nil
}

// Drain copies whatever input is waiting into p without blocking.
func (c *Connection) Drain(p []byte) int {
	return c.queue.drain(p)
}

// PurgeIn discards all waiting input.
func (c *Connection) PurgeIn() {
	c.queue.purge()
}

// Write sends p, doubling IAC bytes in binary mode.
func (c *Connection) Write(p []byte) (int, error) {
	return c.write(p, c.opts.Telnet && c.binary.Load())
}

// WriteRaw sends p untouched.
func (c *Connection) WriteRaw(p []byte) (int, error) {
	return c.write(p, false)
}

// Put writes a single byte under the same rules as Write.
func (c *Connection) Put(ch byte) error {
	_, err := c.Write([]byte{ch})
	return err
}

func (c *Connection) write(p []byte, escape bool) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	n, err := c.writer.Write(p, escape)
	if err != nil {
		if c.closed.Load() {
			return 0, ErrClosed
		}
		return n, err
	}
	return n, nil
}

// Send writes msg followed by CRLF.
func (c *Connection) Send(msg string) error {
	_, err := c.Write([]byte(msg + "\r\n"))
	return err
}

// SetBinaryMode toggles 0xFF escaping on both directions.
func (c *Connection) SetBinaryMode(on bool) {
	if c.binary.Swap(on) != on {
		c.logger.Debug("Telnet binary mode", "enabled", on)
	}
}

func (c *Connection) BinaryMode() bool {
	return c.binary.Load()
}

func (c *Connection) TelnetEnabled() bool {
	return c.opts.Telnet
}

// ScreenPosition asks the terminal where its cursor is. It returns false if no
// report arrives within the configured timeout. The reader keeps running
// while the caller waits.
func (c *Connection) ScreenPosition() (Position, bool) {
	if !c.Connected() {
		return Position{}, false
	}

	req := c.tracker.begin()
	if _, err := c.WriteRaw([]byte(dsrQuery)); err != nil {
		c.tracker.cancel(req)
		return Position{}, false
	}

	timer := time.NewTimer(c.opts.ScreenPositionTimeout)
	defer timer.Stop()

	select {
	case <-req.done:
		if req.ok {
			c.logger.Debug("Terminal cursor position", "row", req.pos.Row, "col", req.pos.Col, "took", time.Since(req.issuedAt))
		}
		return req.pos, req.ok
	case <-timer.C:
		c.tracker.cancel(req)
		c.logger.Debug("Terminal cursor position timed out", "timeout", c.opts.ScreenPositionTimeout)
		return Position{}, false
	}
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.addr
}

// HandleCommand implements the CommandHandler interface. It runs on the
// reader goroutine.
func (c *Connection) HandleCommand(cmd, option byte) {
	if isNegotiation(cmd) {
		c.logger.Debug("Telnet command [IN]", "cmd", commandName(cmd), "opt", optionName(option))

		enabled, err := c.options.receive(cmd, option)
		if err != nil {
			c.logger.Debug("Telnet negotiation reply failed", "err", err)
			return
		}
		if enabled && cmd == WILL && option == TType {
			// We must explicitly ask for the terminal type
			c.SendSubNegotiation(TType, []byte{SEND})
		}
		return
	}

	c.logger.Debug("Telnet command [IN]", "cmd", commandName(cmd))

	switch cmd {
	case AYT:
		if _, err := c.writer.Write([]byte("\r\n[Yes]\r\n"), false); err != nil {
			c.logger.Debug("Telnet AYT reply failed", "err", err)
		}
	case IP:
		c.logger.Info("Telnet IP (Interrupt Process) received")
	case AO:
		c.logger.Info("Telnet AO (Abort Output) received")
	case BRK:
		c.logger.Info("Telnet BRK (Break) received")
	}
}

// HandleSubNegotiation implements the CommandHandler interface
func (c *Connection) HandleSubNegotiation(option byte, data []byte) {
	c.logger.Debug("Telnet sub-negotiation [IN]", "opt", optionName(option), "len", len(data))

	switch option {
	case NAWS:
		// RFC 1073: IAC SB NAWS <16-bit width> <16-bit height> IAC SE
		if len(data) >= 4 {
			width := int(binary.BigEndian.Uint16(data[0:2]))
			height := int(binary.BigEndian.Uint16(data[2:4]))

			c.mu.Lock()
			c.windowWidth = width
			c.windowHeight = height
			c.mu.Unlock()

			c.logger.Debug("Telnet window size", "dims", fmt.Sprintf("%dx%d", width, height))
		}
	case TType:
		// RFC 1091: IAC SB TTYPE IS <terminal-type-string> IAC SE
		if len(data) > 1 && data[0] == IS {
			ttype := string(data[1:])

			c.mu.Lock()
			c.terminalType = ttype
			c.mu.Unlock()

			c.logger.Debug("Telnet terminal type", "type", ttype)
		}
	}
}

// SendWill sends IAC WILL <option> unless already requested or enabled.
func (c *Connection) SendWill(option byte) error {
	return c.options.request(WILL, option)
}

// SendWont sends IAC WONT <option>
func (c *Connection) SendWont(option byte) error {
	return c.options.request(WONT, option)
}

// SendDo sends IAC DO <option> unless already requested or enabled.
func (c *Connection) SendDo(option byte) error {
	return c.options.request(DO, option)
}

// SendDont sends IAC DONT <option>
func (c *Connection) SendDont(option byte) error {
	return c.options.request(DONT, option)
}

// SendSubNegotiation sends a sub-negotiation sequence
func (c *Connection) SendSubNegotiation(option byte, data []byte) error {
	c.logger.Debug("Telnet sub-negotiation [OUT]", "opt", optionName(option), "len", len(data))
	return c.writer.WriteSubNegotiation(option, data)
}

// EnableLocalOption marks an option as enabled for the server side
func (c *Connection) EnableLocalOption(option byte) {
	c.options.setLocal(option, OptionEnabled)
}

// EnableRemoteOption marks an option as enabled for the client side
func (c *Connection) EnableRemoteOption(option byte) {
	c.options.setRemote(option, OptionEnabled)
}

func (c *Connection) LocalOption(option byte) OptionState {
	return c.options.localState(option)
}

func (c *Connection) RemoteOption(option byte) OptionState {
	return c.options.remoteState(option)
}

// IsLocalOptionEnabled checks if we have enabled a specific option
func (c *Connection) IsLocalOptionEnabled(option byte) bool {
	return c.options.localState(option) == OptionEnabled
}

// IsRemoteOptionEnabled checks if the client has enabled a specific option
func (c *Connection) IsRemoteOptionEnabled(option byte) bool {
	return c.options.remoteState(option) == OptionEnabled
}

// NegotiatedOptions describes every option either side has negotiated,
// keyed by option name.
func (c *Connection) NegotiatedOptions() map[string]string {
	local, remote := c.options.snapshot()
	out := make(map[string]string, len(local)+len(remote))
	for opt := range local {
		out[optionName(opt)] = fmt.Sprintf("us=%s them=%s", local[opt], remote[opt])
	}
	for opt := range remote {
		out[optionName(opt)] = fmt.Sprintf("us=%s them=%s", local[opt], remote[opt])
	}
	return out
}

// CursorPosition is ScreenPosition in plain values.
func (c *Connection) CursorPosition() (row, col int, ok bool) {
	pos, ok := c.ScreenPosition()
	return pos.Row, pos.Col, ok
}

func (c *Connection) GetTerminalInfo() nodes.TerminalInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return nodes.TerminalInfo{
		Type:   c.terminalType,
		Width:  c.windowWidth,
		Height: c.windowHeight,
	}
}

// IsUTF8 guesses from the terminal type. BBS terminals (SyncTERM, NetRunner)
// expect CP437 and report "ansi" or their own name.
func (c *Connection) IsUTF8() bool {
	return nodes.IsUTF8Terminal(c.GetTerminalInfo().Type, c.opts.Telnet)
}

// StartNegotiationLogger starts a goroutine that waits for negotiation to complete
// (or timeout) and then logs the connection details.
func (c *Connection) StartNegotiationLogger(timeout time.Duration) {
	go func() {
		deadline := time.Now().Add(timeout)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for time.Now().Before(deadline) && c.Connected() {
			info := c.GetTerminalInfo()
			if info.Type != "" && info.Width > 0 {
				break
			}
			<-ticker.C
		}

		c.LogConnectionInfo()
	}()
}

// LogConnectionInfo logs the summary of the connection info
func (c *Connection) LogConnectionInfo() {
	info := c.GetTerminalInfo()

	ttype := info.Type
	if ttype == "" {
		ttype = "UNKNOWN"
	}

	dims := fmt.Sprintf("%dx%d", info.Width, info.Height)
	if info.Width == 0 || info.Height == 0 {
		dims = "UNKNOWN"
	}

	c.logger.Info("Telnet connection established",
		"addr", c.RemoteAddr(),
		"terminal", ttype,
		"window", dims,
		"binary", c.BinaryMode(),
	)
}
