// Package maestro drives a Pololu Maestro compatible serial servo
// controller using the compact protocol. Targets are sent in quarter
// microseconds; target 0 stops pulses on a channel.
package maestro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/hexwalk/servo_interface/servo"
)

const (
	cmdSetTarget       = 0x84
	cmdSetSpeed        = 0x87
	cmdSetAcceleration = 0x89
	cmdGetErrors       = 0xa1
)

// Board is one controller on a serial bus. Methods are safe for
// concurrent use; the servo bank and the health poller share it.
type Board struct {
	mu   sync.Mutex
	port io.ReadWriter

	// Pulse bounds and last non-zero targets per channel, in the wire
	// unit of 0.25 us.
	min, max map[int]uint16
	last     map[int]uint16
}

// Connect opens the named port and wraps it in a Board.
func Connect(name string, baud int) (*Board, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", name, err)
	}
	return New(port), nil
}

// New wraps an already open port.
func New(port io.ReadWriter) *Board {
	return &Board{
		port: port,
		min:  make(map[int]uint16),
		max:  make(map[int]uint16),
		last: make(map[int]uint16),
	}
}

func lo(x uint16) byte { return byte(x & 0x7f) }
func hi(x uint16) byte { return byte((x >> 7) & 0x7f) }

// quarters converts microseconds to the wire unit.
func quarters(micros float64) uint16 {
	return uint16(micros*4 + 0.5)
}

// Configure records the channel's pulse bounds for clamping and lifts
// the board's own speed and acceleration limits, so position commands
// take effect immediately.
func (b *Board) Configure(channel, minAngle, maxAngle int) error {
	b.mu.Lock()
	b.min[channel] = quarters(servo.PulseMicros(minAngle))
	b.max[channel] = quarters(servo.PulseMicros(maxAngle))
	b.mu.Unlock()
	if err := b.write(cmdSetSpeed, channel, 0); err != nil {
		return err
	}
	return b.write(cmdSetAcceleration, channel, 0)
}

// Enable drives the channel at its last target, or neutral if it has
// never been driven.
func (b *Board) Enable(channel int) error {
	b.mu.Lock()
	target, ok := b.last[channel]
	b.mu.Unlock()
	if !ok {
		target = quarters(servo.PulseMicros(0))
	}
	return b.setTarget(channel, target)
}

// Disable sends target 0, stopping pulses on the channel.
func (b *Board) Disable(channel int) error {
	return b.setTarget(channel, 0)
}

// SetPulseMicros drives the channel, clamped to its configured range.
func (b *Board) SetPulseMicros(channel int, micros float64) error {
	target := quarters(micros)
	b.mu.Lock()
	if min, ok := b.min[channel]; ok && target < min {
		target = min
	}
	if max, ok := b.max[channel]; ok && target > max {
		target = max
	}
	b.mu.Unlock()
	return b.setTarget(channel, target)
}

func (b *Board) setTarget(channel int, target uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if target != 0 {
		b.last[channel] = target
	}
	_, err := b.port.Write([]byte{cmdSetTarget, byte(channel), lo(target), hi(target)})
	return err
}

func (b *Board) write(cmd byte, channel int, value uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.port.Write([]byte{cmd, byte(channel), lo(value), hi(value)})
	return err
}

// Errors reads and clears the controller's error bitmap.
func (b *Board) Errors() (uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.port.Write([]byte{cmdGetErrors}); err != nil {
		return 0, err
	}
	buf := make([]byte, 2)
	if _, err := io.ReadFull(b.port, buf); err != nil {
		return 0, err
	}
	return (uint16(buf[0]) & 0x7f) | (uint16(buf[1])&0x7f)<<8, nil
}

// DecodeErrors converts an error bitmap into an error, or nil when
// the bitmap is clean.
func DecodeErrors(mask uint16) error {
	errorStrings := []string{
		"serial signal error",          // bit 0
		"serial overrun error",         // bit 1
		"serial buffer full",           // bit 2
		"serial crc error",             // bit 3
		"serial protocol error",        // bit 4
		"serial timeout",               // bit 5
		"script stack error",           // bit 6
		"script call stack error",      // bit 7
		"script program counter error", // bit 8
	}
	var s []string
	for i, e := range errorStrings {
		if mask&(1<<uint(i)) != 0 {
			s = append(s, e)
		}
	}
	if len(s) == 0 {
		return nil
	}
	return errors.New(strings.Join(s, ","))
}

// PollErrors logs controller faults every interval until ctx ends.
func (b *Board) PollErrors(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		mask, err := b.Errors()
		if err != nil {
			log.Printf("reading board errors: %v", err)
			continue
		}
		if err := DecodeErrors(mask); err != nil {
			log.Printf("board fault: %v", err)
		}
	}
}
