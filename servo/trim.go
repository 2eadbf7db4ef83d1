package servo

import (
	"fmt"
	"sync"
)

// Trim wraps a PulseSink and shifts each channel's output by a
// per-channel mechanical trim in degrees, so linkage slop can be
// nulled out without touching the commanded angles. The shifted pulse
// is clamped to the channel's configured range.
//
// Offsets may be changed at runtime from another goroutine (the
// monitor API does); the underlying sink must tolerate the occasional
// concurrent write that a live offset change produces.
type Trim struct {
	sink PulseSink

	mu sync.Mutex
	// offsets are added to the commanded angle at the pulse level.
	offsets []int
	// last commanded pulse per channel, before trim.
	base []float64
	// configured pulse bounds per channel.
	min, max []float64
	driven   []bool
}

// NewTrim returns a trim layer for a bank of the given size, with all
// offsets zero and bounds covering the full angle range.
func NewTrim(sink PulseSink, channels int) *Trim {
	if channels <= 0 {
		channels = DefaultChannels
	}
	t := &Trim{
		sink:    sink,
		offsets: make([]int, channels),
		base:    make([]float64, channels),
		min:     make([]float64, channels),
		max:     make([]float64, channels),
		driven:  make([]bool, channels),
	}
	for ch := range t.min {
		t.min[ch] = PulseMicros(MinAngle)
		t.max[ch] = PulseMicros(MaxAngle)
	}
	return t
}

// SetOffset changes one channel's trim. If the channel has already
// been driven, the adjusted pulse is sent immediately so the change
// is visible without waiting for the next command.
func (t *Trim) SetOffset(channel, degrees int) error {
	t.mu.Lock()
	if channel < 0 || channel >= len(t.offsets) {
		t.mu.Unlock()
		return fmt.Errorf("trim channel %d out of range", channel)
	}
	t.offsets[channel] = degrees
	redrive := t.driven[channel]
	micros := t.shifted(channel)
	t.mu.Unlock()
	if redrive {
		return t.sink.SetPulseMicros(channel, micros)
	}
	return nil
}

// Offsets returns a copy of all trim offsets.
func (t *Trim) Offsets() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, len(t.offsets))
	copy(out, t.offsets)
	return out
}

// shifted returns the channel's base pulse with trim applied and
// clamped. Caller holds t.mu.
func (t *Trim) shifted(channel int) float64 {
	micros := t.base[channel] + PulseMicros(t.offsets[channel]) - PulseMicros(0)
	if micros < t.min[channel] {
		micros = t.min[channel]
	}
	if micros > t.max[channel] {
		micros = t.max[channel]
	}
	return micros
}

func (t *Trim) Configure(channel, minAngle, maxAngle int) error {
	t.mu.Lock()
	if channel >= 0 && channel < len(t.min) {
		t.min[channel] = PulseMicros(minAngle)
		t.max[channel] = PulseMicros(maxAngle)
	}
	t.mu.Unlock()
	return t.sink.Configure(channel, minAngle, maxAngle)
}

func (t *Trim) Enable(channel int) error {
	return t.sink.Enable(channel)
}

func (t *Trim) Disable(channel int) error {
	return t.sink.Disable(channel)
}

func (t *Trim) SetPulseMicros(channel int, micros float64) error {
	t.mu.Lock()
	if channel < 0 || channel >= len(t.base) {
		t.mu.Unlock()
		return t.sink.SetPulseMicros(channel, micros)
	}
	t.base[channel] = micros
	t.driven[channel] = true
	micros = t.shifted(channel)
	t.mu.Unlock()
	return t.sink.SetPulseMicros(channel, micros)
}
