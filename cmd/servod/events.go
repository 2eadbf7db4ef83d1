package main

import (
	"sync"

	"github.com/hexwalk/servo_interface/proto"
)

// Event is one parser outcome kept for the monitor API.
type Event struct {
	Seq     uint64 `json:"seq"`
	Kind    string `json:"kind"`
	Channel int    `json:"channel"`
	Angle   int    `json:"angle"`
	Reason  string `json:"reason,omitempty"`
	Segment string `json:"segment,omitempty"`
}

// eventLog keeps the most recent parser events in a ring.
type eventLog struct {
	mu   sync.Mutex
	seq  uint64
	ring []Event
	next int
	full bool
}

func newEventLog(size int) *eventLog {
	return &eventLog{ring: make([]Event, size)}
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	ev.Seq = l.seq
	l.ring[l.next] = ev
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
}

func (l *eventLog) Accepted(cmd proto.Command) {
	l.add(Event{Kind: "accepted", Channel: cmd.Channel, Angle: cmd.Angle})
}

func (l *eventLog) Rejected(reason proto.RejectReason, segment string) {
	l.add(Event{Kind: "rejected", Reason: reason.String(), Segment: segment})
}

// Snapshot returns the retained events oldest first. The result is
// never nil, so the monitor API serves [] rather than null.
func (l *eventLog) Snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, 0, len(l.ring))
	if l.full {
		out = append(out, l.ring[l.next:]...)
	}
	out = append(out, l.ring[:l.next]...)
	return out
}
