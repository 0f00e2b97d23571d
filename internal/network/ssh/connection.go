package ssh

import (
	"net"
	"strings"
	"sync"

	"github.com/gliderlabs/ssh"

	"nodebbs/internal/nodes"
)

// Connection puts an SSH session on a node. Window changes from the client
// are tracked for as long as the session lives.
type Connection struct {
	ssh.Session

	mu     sync.RWMutex
	term   string
	lang   string
	width  int
	height int
}

func NewConnection(sess ssh.Session) *Connection {
	c := &Connection{Session: sess}

	for _, kv := range sess.Environ() {
		if v, ok := strings.CutPrefix(kv, "LANG="); ok {
			c.lang = v
		}
	}

	pty, resized, ok := sess.Pty()
	if !ok {
		return c
	}
	c.term = pty.Term
	c.resize(pty.Window)

	go func() {
		for win := range resized {
			c.resize(win)
		}
	}()
	return c
}

func (c *Connection) resize(win ssh.Window) {
	c.mu.Lock()
	c.width, c.height = win.Width, win.Height
	c.mu.Unlock()
}

func (c *Connection) Send(msg string) error {
	_, err := c.Write([]byte(msg + "\r\n"))
	return err
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.Session.RemoteAddr()
}

func (c *Connection) GetTerminalInfo() nodes.TerminalInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return nodes.TerminalInfo{Type: c.term, Width: c.width, Height: c.height}
}

// IsUTF8 trusts LANG when the client forwards it.
func (c *Connection) IsUTF8() bool {
	if c.lang != "" {
		return strings.Contains(strings.ToUpper(c.lang), "UTF")
	}
	return nodes.IsUTF8Terminal(c.term, false)
}
