// Package stream provides non-blocking input sources for the command
// pipeline: a reconnecting serial port, in-memory queues, and a TCP
// line port. The control loop drains them; producers never block it.
package stream

import (
	"sync"

	"github.com/hexwalk/servo_interface/proto"
)

// DefaultQueueSize is the byte queue capacity, a few seconds of
// command traffic at typical baud rates.
const DefaultQueueSize = 4096

// Queue is an in-memory byte source. Producers push from any
// goroutine; the control loop drains one byte at a time. When the
// queue is full further input is dropped, like a UART FIFO overrun.
type Queue struct {
	mu sync.Mutex
	ch chan byte
}

// NewQueue returns a queue with the given capacity. size <= 0 selects
// DefaultQueueSize.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan byte, size)}
}

// TryReadByte returns the next queued byte if one is ready.
func (q *Queue) TryReadByte() (byte, bool) {
	select {
	case b := <-q.ch:
		return b, true
	default:
		return 0, false
	}
}

// Push appends p and returns how many bytes fit. Pushes are
// serialized so two producers cannot interleave within a chunk.
func (q *Queue) Push(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, b := range p {
		select {
		case q.ch <- b:
		default:
			return i
		}
	}
	return len(p)
}

// DefaultLineQueueSize bounds how many injected lines can be waiting.
const DefaultLineQueueSize = 64

// Lines queues complete command lines from inputs that arrive above
// the byte layer (TCP connections, the monitor socket). Queuing whole
// lines keeps them from interleaving with the serial byte stream
// mid-line.
type Lines struct {
	ch chan string
}

// NewLines returns a line queue with the given capacity. size <= 0
// selects DefaultLineQueueSize.
func NewLines(size int) *Lines {
	if size <= 0 {
		size = DefaultLineQueueSize
	}
	return &Lines{ch: make(chan string, size)}
}

// Push queues one line, sanitized to the protocol's character set and
// length cap. It reports whether the line fit.
func (l *Lines) Push(line string) bool {
	select {
	case l.ch <- proto.Clean(line):
		return true
	default:
		return false
	}
}

// TryNext returns the next queued line if one is ready.
func (l *Lines) TryNext() (string, bool) {
	select {
	case line := <-l.ch:
		return line, true
	default:
		return "", false
	}
}
