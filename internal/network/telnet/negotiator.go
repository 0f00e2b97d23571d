package telnet

import (
	"log/slog"
	"sync"
)

// OptionState represents the state of a Telnet option
type OptionState int

const (
	OptionUnknown OptionState = iota
	OptionEnabled
	OptionDisabled
)

func (s OptionState) String() string {
	switch s {
	case OptionEnabled:
		return "Enabled"
	case OptionDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// OptionPolicy says which sides of an option we accept.
type OptionPolicy struct {
	Local  bool // we agree to DO requests with WILL
	Remote bool // we agree to WILL offers with DO
}

// DefaultPolicy is used when a Connection is built without its own table.
// Options not listed are refused.
var DefaultPolicy = map[byte]OptionPolicy{
	TransmitBinary: {Local: true, Remote: true},
	Echo:           {Local: true},
	SGA:            {Local: true, Remote: true},
	NAWS:           {Remote: true},
	TType:          {Remote: true},
}

// negotiator keeps the option table for one connection and produces the
// replies to inbound WILL/WONT/DO/DONT.
type negotiator struct {
	mu     sync.RWMutex
	writer *Writer
	logger *slog.Logger
	policy map[byte]OptionPolicy

	local  map[byte]OptionState // options WE perform
	remote map[byte]OptionState // options THE CLIENT performs

	// Requests we initiated and have not seen answered, to avoid loops.
	sentWill map[byte]bool
	sentDo   map[byte]bool
}

func newNegotiator(w *Writer, logger *slog.Logger, policy map[byte]OptionPolicy) *negotiator {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &negotiator{
		writer:   w,
		logger:   logger,
		policy:   policy,
		local:    make(map[byte]OptionState),
		remote:   make(map[byte]OptionState),
		sentWill: make(map[byte]bool),
		sentDo:   make(map[byte]bool),
	}
}

// receive applies an inbound negotiation and writes any reply. enabled is
// true when the option has just become enabled.
func (n *negotiator) receive(cmd, option byte) (enabled bool, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch cmd {
	case DO:
		return n.enableRequest(n.local, n.sentWill, option, n.policy[option].Local, WILL, WONT)
	case DONT:
		return false, n.disableDemand(n.local, n.sentWill, option, WONT)
	case WILL:
		return n.enableRequest(n.remote, n.sentDo, option, n.policy[option].Remote, DO, DONT)
	case WONT:
		return false, n.disableDemand(n.remote, n.sentDo, option, DONT)
	}
	return false, nil
}

func (n *negotiator) enableRequest(table map[byte]OptionState, sent map[byte]bool, option byte, allowed bool, accept, reject byte) (bool, error) {
	if !allowed {
		table[option] = OptionDisabled
		sent[option] = false
		return false, n.send(reject, option)
	}
	if table[option] == OptionEnabled {
		return false, nil
	}
	table[option] = OptionEnabled
	if sent[option] {
		// The peer is agreeing to our own request.
		return true, nil
	}
	sent[option] = true
	return true, n.send(accept, option)
}

func (n *negotiator) disableDemand(table map[byte]OptionState, sent map[byte]bool, option byte, ack byte) error {
	prev := table[option]
	table[option] = OptionDisabled
	sent[option] = false
	if prev != OptionEnabled {
		// Refusal of our request, or already off.
		return nil
	}
	return n.send(ack, option)
}

// request starts a negotiation from our side. Repeats are suppressed.
func (n *negotiator) request(cmd, option byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch cmd {
	case WILL:
		if n.sentWill[option] || n.local[option] == OptionEnabled {
			return nil
		}
		n.sentWill[option] = true
	case DO:
		if n.sentDo[option] || n.remote[option] == OptionEnabled {
			return nil
		}
		n.sentDo[option] = true
	case WONT:
		n.sentWill[option] = false
		n.local[option] = OptionDisabled
	case DONT:
		n.sentDo[option] = false
		n.remote[option] = OptionDisabled
	}
	return n.send(cmd, option)
}

func (n *negotiator) send(cmd, option byte) error {
	n.logger.Debug("Telnet command [OUT]", "cmd", commandName(cmd), "opt", optionName(option))
	return n.writer.WriteCommand(cmd, option)
}

func (n *negotiator) localState(option byte) OptionState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.local[option]
}

func (n *negotiator) remoteState(option byte) OptionState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.remote[option]
}

func (n *negotiator) setLocal(option byte, state OptionState) {
	n.mu.Lock()
	n.local[option] = state
	n.mu.Unlock()
}

func (n *negotiator) setRemote(option byte, state OptionState) {
	n.mu.Lock()
	n.remote[option] = state
	n.mu.Unlock()
}

// snapshot returns copies of both tables.
func (n *negotiator) snapshot() (local, remote map[byte]OptionState) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	local = make(map[byte]OptionState, len(n.local))
	for k, v := range n.local {
		local[k] = v
	}
	remote = make(map[byte]OptionState, len(n.remote))
	for k, v := range n.remote {
		remote[k] = v
	}
	return local, remote
}
