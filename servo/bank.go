package servo

import (
	"fmt"
)

// PulseSink is the hardware behind the bank: a servo driver that can
// be calibrated, enabled, and driven with pulse widths. Implementations
// must tolerate calls for any configured channel from a single
// goroutine; they do not need to be safe for concurrent use by the
// bank's owner.
type PulseSink interface {
	// Configure sets the angle range for one channel before use.
	Configure(channel, minAngle, maxAngle int) error
	// Enable starts driving the channel at its last pulse width.
	Enable(channel int) error
	// Disable stops driving the channel.
	Disable(channel int) error
	// SetPulseMicros drives the channel with the given pulse width.
	SetPulseMicros(channel int, micros float64) error
}

// Bank tracks the commanded angle of every channel and forwards
// position changes to the sink. All methods must be called from the
// owning goroutine; Bank does no locking of its own.
type Bank struct {
	sink    PulseSink
	current []int
}

// NewBank returns a bank of the given size. channels <= 0 selects
// DefaultChannels.
func NewBank(sink PulseSink, channels int) *Bank {
	if channels <= 0 {
		channels = DefaultChannels
	}
	return &Bank{sink: sink, current: make([]int, channels)}
}

// Init calibrates every channel over the full angle range, drives it
// to the neutral pulse, and enables it. Must complete before commands
// are applied.
func (b *Bank) Init() error {
	for ch := range b.current {
		if err := b.sink.Configure(ch, MinAngle, MaxAngle); err != nil {
			return fmt.Errorf("configuring ch %d: %w", ch, err)
		}
		if err := b.sink.SetPulseMicros(ch, PulseMicros(0)); err != nil {
			return fmt.Errorf("centering ch %d: %w", ch, err)
		}
		b.current[ch] = 0
	}
	for ch := range b.current {
		if err := b.sink.Enable(ch); err != nil {
			return fmt.Errorf("enabling ch %d: %w", ch, err)
		}
	}
	return nil
}

// Apply drives one channel to the given angle and records it. The
// caller has already validated channel and angle; the recorded angle
// is updated even if the sink write fails, since the failure is
// transient while the command intent is not.
func (b *Bank) Apply(channel, angle int) error {
	err := b.sink.SetPulseMicros(channel, PulseMicros(angle))
	b.current[channel] = angle
	if err != nil {
		return fmt.Errorf("driving ch %d: %w", channel, err)
	}
	return nil
}

// Current returns the last commanded angle for the channel.
func (b *Bank) Current(channel int) int {
	return b.current[channel]
}

// Channels returns the bank size.
func (b *Bank) Channels() int {
	return len(b.current)
}

// Angles returns a copy of all commanded angles.
func (b *Bank) Angles() []int {
	out := make([]int, len(b.current))
	copy(out, b.current)
	return out
}

// Shutdown disables every channel. Errors are collected so one bad
// channel does not leave the rest driven.
func (b *Bank) Shutdown() error {
	var firstErr error
	for ch := range b.current {
		if err := b.sink.Disable(ch); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("disabling ch %d: %w", ch, err)
		}
	}
	return firstErr
}
