package nodes

import (
	"fmt"
	"net"

	"nodebbs/internal/store"
)

type TerminalInfo struct {
	Type   string
	Width  int
	Height int
}

// Connection is what a node needs from whichever listener accepted the
// caller.
type Connection interface {
	Send(msg string) error
	RemoteAddr() net.Addr
	GetTerminalInfo() TerminalInfo
	IsUTF8() bool
	Close() error
}

type Node struct {
	ID   int
	Conn Connection
	User *store.User
}

func (n *Node) Username() string {
	if n.User == nil {
		return "guest"
	}
	return n.User.Username
}

func (n *Node) String() string {
	if n.Conn == nil {
		return fmt.Sprintf("Node %d (Disconnected)", n.ID)
	}
	return fmt.Sprintf("Node %d (%s)", n.ID, n.Conn.RemoteAddr())
}
