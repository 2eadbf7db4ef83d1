package proto

import "log"

// RejectReason classifies why a segment was dropped.
type RejectReason int

const (
	// RejectMalformed means the segment had no comma.
	RejectMalformed RejectReason = iota
	// RejectChannel means the channel index was outside the bank.
	RejectChannel
	// RejectAngle means the angle was outside the configured limits.
	RejectAngle
)

func (r RejectReason) String() string {
	switch r {
	case RejectMalformed:
		return "malformed"
	case RejectChannel:
		return "channel out of range"
	case RejectAngle:
		return "angle out of range"
	}
	return "unknown"
}

// EventSink receives per-segment parse outcomes.
type EventSink interface {
	Accepted(cmd Command)
	Rejected(reason RejectReason, segment string)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Accepted(Command)              {}
func (NopSink) Rejected(RejectReason, string) {}

// LogSink writes events to the standard logger.
type LogSink struct{}

func (LogSink) Accepted(cmd Command) {
	log.Printf("accepted ch %d -> %d", cmd.Channel, cmd.Angle)
}

func (LogSink) Rejected(reason RejectReason, segment string) {
	log.Printf("rejected segment %q: %s", segment, reason)
}

// Sinks fans events out to several sinks in order.
type Sinks []EventSink

func (s Sinks) Accepted(cmd Command) {
	for _, sink := range s {
		sink.Accepted(cmd)
	}
}

func (s Sinks) Rejected(reason RejectReason, segment string) {
	for _, sink := range s {
		sink.Rejected(reason, segment)
	}
}
