package telnet

import (
	"sync"
	"time"
)

// dsrQuery asks the terminal for its cursor position (ANSI DSR 6).
const dsrQuery = "\x1b[6n"

// Position is a 1-based cursor location reported by the terminal.
type Position struct {
	Row int
	Col int
}

type positionRequest struct {
	issuedAt time.Time
	done     chan struct{}
	pos      Position
	ok       bool
}

type scanPhase int

const (
	scanIdle scanPhase = iota
	scanEsc
	scanRow
	scanCol
)

// Reports with more digits than this are not cursor reports.
const maxReportDigits = 4

// positionTracker pulls an `ESC [ row ; col R` reply out of the decoded
// stream while a query is outstanding. The scan state belongs to the reader
// goroutine; only pending is shared.
type positionTracker struct {
	mu      sync.Mutex
	pending *positionRequest

	phase  scanPhase
	held   []byte
	row    int
	col    int
	digits int
}

func (t *positionTracker) begin() *positionRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		t.pending = &positionRequest{
			issuedAt: time.Now(),
			done:     make(chan struct{}),
		}
	}
	return t.pending
}

func (t *positionTracker) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// cancel discards req if it is still the outstanding request.
func (t *positionTracker) cancel(req *positionRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == req {
		t.pending = nil
	}
}

func (t *positionTracker) resolve(pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return
	}
	t.pending.pos = pos
	t.pending.ok = true
	close(t.pending.done)
	t.pending = nil
}

// abort releases any waiter without a result.
func (t *positionTracker) abort() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		close(t.pending.done)
		t.pending = nil
	}
}

// filter returns data with a matching cursor report removed. A report split
// across calls is held back until it completes or turns out to be data.
func (t *positionTracker) filter(data []byte) []byte {
	active := t.active()
	if !active {
		if t.phase == scanIdle {
			return data
		}
		// The query was given up on; what was held is ordinary input.
		out := t.flush(make([]byte, 0, len(data)+len(t.held)))
		return append(out, data...)
	}

	out := make([]byte, 0, len(data)+len(t.held))
	for _, b := range data {
		switch t.phase {
		case scanIdle:
			out = t.idle(out, b, active)
		case scanEsc:
			if b == '[' {
				t.held = append(t.held, b)
				t.phase = scanRow
				t.row, t.col, t.digits = 0, 0, 0
				continue
			}
			out = t.idle(t.flush(out), b, active)
		case scanRow:
			if b >= '0' && b <= '9' && t.digits < maxReportDigits {
				t.held = append(t.held, b)
				t.row = t.row*10 + int(b-'0')
				t.digits++
				continue
			}
			if b == ';' && t.digits > 0 {
				t.held = append(t.held, b)
				t.phase = scanCol
				t.digits = 0
				continue
			}
			out = t.idle(t.flush(out), b, active)
		case scanCol:
			if b >= '0' && b <= '9' && t.digits < maxReportDigits {
				t.held = append(t.held, b)
				t.col = t.col*10 + int(b-'0')
				t.digits++
				continue
			}
			if b == 'R' && t.digits > 0 {
				t.held = t.held[:0]
				t.phase = scanIdle
				t.resolve(Position{Row: t.row, Col: t.col})
				active = t.active()
				continue
			}
			out = t.idle(t.flush(out), b, active)
		}
	}

	return out
}

func (t *positionTracker) idle(out []byte, b byte, active bool) []byte {
	if b == 0x1b && active {
		t.held = append(t.held[:0], b)
		t.phase = scanEsc
		return out
	}
	return append(out, b)
}

func (t *positionTracker) flush(out []byte) []byte {
	out = append(out, t.held...)
	t.held = t.held[:0]
	t.phase = scanIdle
	return out
}
