// Package simulator provides software stand-ins for the servo board,
// the pixel bar, and the reset button so servod can run without
// hardware attached.
package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hexwalk/servo_interface/led"
)

const (
	// Maximum slew rate in pulse microseconds per second, roughly a
	// 0.2s/60deg hobby servo.
	maxSlew = 1000
	// Discrete simulation step size
	stepSize = 25 * time.Millisecond
)

// State is one simulated channel.
type State struct {
	Enabled      bool    `json:"enabled"`
	TargetMicros float64 `json:"target_micros"`
	PulseMicros  float64 `json:"pulse_micros"`
}

// Servos tracks commanded pulse targets and slews simulated positions
// toward them.
type Servos struct {
	mu      sync.Mutex
	target  map[int]float64
	pos     map[int]float64
	enabled map[int]bool
}

func NewServos() *Servos {
	return &Servos{
		target:  make(map[int]float64),
		pos:     make(map[int]float64),
		enabled: make(map[int]bool),
	}
}

func (s *Servos) Configure(channel, minAngle, maxAngle int) error {
	return nil
}

func (s *Servos) Enable(channel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[channel] = true
	return nil
}

func (s *Servos) Disable(channel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[channel] = false
	return nil
}

func (s *Servos) SetPulseMicros(channel int, micros float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pos[channel]; !ok {
		// first command seeds the simulated position
		s.pos[channel] = micros
	}
	s.target[channel] = micros
	return nil
}

func (s *Servos) step(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maxDelta := maxSlew * dt.Seconds()
	for ch, target := range s.target {
		if !s.enabled[ch] {
			// an undriven servo holds its position
			continue
		}
		delta := target - s.pos[ch]
		if delta > maxDelta {
			delta = maxDelta
		} else if delta < -maxDelta {
			delta = -maxDelta
		}
		s.pos[ch] += delta
	}
}

// Run steps the simulation until ctx is canceled.
func (s *Servos) Run(ctx context.Context) error {
	t := time.NewTicker(stepSize)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		s.step(stepSize)
	}
}

// States returns a snapshot of every channel that has been driven.
func (s *Servos) States() map[int]State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]State, len(s.target))
	for ch, target := range s.target {
		out[ch] = State{
			Enabled:      s.enabled[ch],
			TargetMicros: target,
			PulseMicros:  s.pos[ch],
		}
	}
	return out
}

// Strip records pixel colors in memory.
type Strip struct {
	mu      sync.Mutex
	started bool
	pixels  []led.Color
}

func NewStrip(pixels int) *Strip {
	if pixels <= 0 {
		pixels = led.DefaultPixels
	}
	return &Strip{pixels: make([]led.Color, pixels)}
}

func (s *Strip) SetColor(index int, c led.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pixels) {
		return fmt.Errorf("pixel %d out of range", index)
	}
	s.pixels[index] = c
	return nil
}

func (s *Strip) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pixels {
		s.pixels[i] = led.Color{}
	}
	return nil
}

func (s *Strip) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

// Colors returns a copy of the pixel state.
func (s *Strip) Colors() []led.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]led.Color, len(s.pixels))
	copy(out, s.pixels)
	return out
}

func (s *Strip) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Button is a reset trigger that can be pressed from the monitor API.
type Button struct {
	mu      sync.Mutex
	pressed bool
}

func (b *Button) Press() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = true
}

func (b *Button) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = false
}

// Read reports the button level.
func (b *Button) Read() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pressed
}
