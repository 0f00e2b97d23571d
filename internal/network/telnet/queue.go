package telnet

import "sync"

// inputQueue hands decoded bytes from the reader goroutine to the consumer.
// The reader is the only producer.
type inputQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
}

func newInputQueue() *inputQueue {
	q := &inputQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *inputQueue) push(p []byte) {
	if len(p) == 0 {
		return
	}
	q.mu.Lock()
	q.buf = append(q.buf, p...)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// retract removes up to n bytes from the tail. Bytes the consumer already
// took are gone for good; the number actually removed is returned.
func (q *inputQueue) retract(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.buf) {
		n = len(q.buf)
	}
	q.buf = q.buf[:len(q.buf)-n]
	return n
}

// pop blocks until a byte is available or the queue is closed and empty.
func (q *inputQueue) pop() (byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.buf) == 0 {
		return 0, false
	}
	b := q.buf[0]
	q.buf = q.buf[1:]
	return b, true
}

// read blocks like pop, then drains as much as fits in p.
func (q *inputQueue) read(p []byte) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.buf) == 0 {
		return 0, false
	}
	return q.take(p), true
}

// drain copies what is queued into p without waiting.
func (q *inputQueue) drain(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.take(p)
}

func (q *inputQueue) take(p []byte) int {
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	if len(q.buf) == 0 {
		q.buf = nil
	}
	return n
}

func (q *inputQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

func (q *inputQueue) purge() {
	q.mu.Lock()
	q.buf = nil
	q.mu.Unlock()
}

// close wakes every waiter; queued bytes remain readable.
func (q *inputQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *inputQueue) reopen() {
	q.mu.Lock()
	q.closed = false
	q.mu.Unlock()
}
