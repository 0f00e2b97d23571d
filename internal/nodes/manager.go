package nodes

import (
	"errors"
	"sync"
)

var ErrSystemFull = errors.New("system full")

// Manager hands out the board's fixed set of node slots.
type Manager struct {
	mu       sync.RWMutex
	maxNodes int
	nodes    []*Node
}

func NewManager(maxNodes int) *Manager {
	if maxNodes <= 0 {
		maxNodes = 10
	}
	return &Manager{
		maxNodes: maxNodes,
		nodes:    make([]*Node, maxNodes),
	}
}

// Attach takes the lowest free slot for conn. A caller turned away with
// ErrSystemFull still owns conn.
func (m *Manager) Attach(conn Connection) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, n := range m.nodes {
		if n == nil {
			node := &Node{ID: i + 1, Conn: conn}
			m.nodes[i] = node
			return node, nil
		}
	}
	return nil, ErrSystemFull
}

// Free is the number of nodes waiting for a caller.
func (m *Manager) Free() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	free := 0
	for _, n := range m.nodes {
		if n == nil {
			free++
		}
	}
	return free
}

func (m *Manager) Release(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 1 || id > m.maxNodes {
		return
	}
	m.nodes[id-1] = nil
}

func (m *Manager) Get(id int) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > m.maxNodes {
		return nil
	}
	return m.nodes[id-1]
}

// Active returns the occupied nodes in slot order.
func (m *Manager) Active() []*Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []*Node
	for _, n := range m.nodes {
		if n != nil {
			active = append(active, n)
		}
	}
	return active
}

// Kick closes the connection on node id. The session notices on its next
// read and releases the slot itself.
func (m *Manager) Kick(id int) error {
	n := m.Get(id)
	if n == nil || n.Conn == nil {
		return errors.New("node not connected")
	}
	return n.Conn.Close()
}

func (m *Manager) Broadcast(msg string) {
	m.BroadcastExcept(msg, -1)
}

func (m *Manager) BroadcastExcept(msg string, exceptID int) {
	for _, n := range m.Active() {
		if n.Conn != nil && n.ID != exceptID {
			// Ignore errors for broadcast
			n.Conn.Send(msg)
		}
	}
}
