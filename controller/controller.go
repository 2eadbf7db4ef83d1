// Package controller runs the cooperative loop that turns incoming
// command lines into servo motion while keeping the status pixels and
// the reset button serviced.
package controller

import (
	"context"
	"log"
	"time"

	"github.com/hexwalk/servo_interface/internal/clock"
	"github.com/hexwalk/servo_interface/led"
	"github.com/hexwalk/servo_interface/proto"
	"github.com/hexwalk/servo_interface/servo"
	"github.com/hexwalk/servo_interface/stream"
)

// Trigger is the reset button. Read reports the debounced level; edge
// detection happens in the loop.
type Trigger interface {
	Read() bool
}

// Status is a snapshot of the loop's visible state, pushed to the
// status callback whenever a tick changes something.
type Status struct {
	Angles   []int  `json:"angles"`
	Flashing bool   `json:"flashing"`
	Lines    uint64 `json:"lines"`
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

// StatusCallback receives status snapshots. It is called from the
// loop goroutine and must not block.
type StatusCallback func(status Status)

const (
	// DefaultDrainLimit bounds how many lines one tick may process, so
	// a command flood cannot starve the button poll or flash expiry.
	DefaultDrainLimit = 100
	// DefaultIdleDelay is slept after a tick that found no work.
	DefaultIdleDelay = time.Millisecond
)

// Config assembles a Controller. Bank and Indicator are required;
// everything else has a usable zero value.
type Config struct {
	// Source is the raw byte input. May be nil when all input arrives
	// through Injected.
	Source proto.ByteSource
	// Injected supplies whole lines from above the byte layer. They
	// are drained only when Source is dry, so a line mid-assembly is
	// never split.
	Injected *stream.Lines

	Bank      *servo.Bank
	Indicator *led.Indicator
	Trigger   Trigger
	Clock     clock.Clock
	// Events receives per-segment parse outcomes.
	Events proto.EventSink

	DrainLimit     int
	IdleDelay      time.Duration
	StatusCallback StatusCallback
}

// Controller owns the bank, the line assembler, and the indicator.
// Tick and Run must be called from a single goroutine; nothing else
// may touch the owned state.
type Controller struct {
	src      proto.ByteSource
	injected *stream.Lines
	asm      *proto.Assembler
	parser   proto.Parser
	bank     *servo.Bank
	ind      *led.Indicator
	trigger  Trigger
	clk      clock.Clock

	drainLimit     int
	idleDelay      time.Duration
	statusCallback StatusCallback

	lastTrigger bool
	lines       uint64
	accepted    uint64
	rejected    uint64
}

// New builds a controller. The parser's limits come from the bank's
// geometry.
func New(cfg Config) *Controller {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	drain := cfg.DrainLimit
	if drain <= 0 {
		drain = DefaultDrainLimit
	}
	idle := cfg.IdleDelay
	if idle <= 0 {
		idle = DefaultIdleDelay
	}
	return &Controller{
		src:            cfg.Source,
		injected:       cfg.Injected,
		asm:            proto.NewAssembler(),
		parser:         proto.Parser{Channels: cfg.Bank.Channels(), MinAngle: servo.MinAngle, MaxAngle: servo.MaxAngle, Events: cfg.Events},
		bank:           cfg.Bank,
		ind:            cfg.Indicator,
		trigger:        cfg.Trigger,
		clk:            clk,
		drainLimit:     drain,
		idleDelay:      idle,
		statusCallback: cfg.StatusCallback,
	}
}

// Tick performs one bounded unit of work: poll the reset button, age
// the activity flash, then drain at most DrainLimit lines. On a
// rising button edge the blocking sweep runs instead of draining. It
// reports whether any work was done, so Run knows when to sleep.
func (c *Controller) Tick() bool {
	if c.trigger != nil {
		pressed := c.trigger.Read()
		edge := pressed && !c.lastTrigger
		c.lastTrigger = pressed
		if edge {
			log.Print("reset pressed; running sweep")
			c.ind.Sweep()
			c.notifyStatus()
			return true
		}
	}

	wasFlashing := c.ind.Flashing()
	c.ind.Tick()
	changed := wasFlashing != c.ind.Flashing()

	drained := 0
	for drained < c.drainLimit {
		line, ok := c.nextLine()
		if !ok {
			break
		}
		drained++
		// Any completed line flashes, valid or not: the bar shows
		// that bytes arrive even when a sender is misconfigured.
		c.ind.Flash()
		batch := c.parser.Parse(line)
		for _, cmd := range batch.Commands {
			if err := c.bank.Apply(cmd.Channel, cmd.Angle); err != nil {
				log.Print(err)
			}
		}
		c.lines++
		c.accepted += uint64(len(batch.Commands))
		c.rejected += uint64(batch.Rejected)
	}
	if drained > 0 {
		changed = true
	}
	if changed {
		c.notifyStatus()
	}
	return drained > 0
}

// nextLine prefers the raw byte stream; injected lines are taken only
// once it runs dry.
func (c *Controller) nextLine() (string, bool) {
	if c.src != nil {
		if line, ok := c.asm.Next(c.src); ok {
			return line, true
		}
	}
	if c.injected != nil {
		for {
			line, ok := c.injected.TryNext()
			if !ok {
				return "", false
			}
			// A line that sanitized down to nothing is a no-op, like
			// a bare terminator on the byte stream.
			if line != "" {
				return line, true
			}
		}
	}
	return "", false
}

// Run executes ticks until ctx is canceled, sleeping briefly whenever
// a tick found nothing to do.
func (c *Controller) Run(ctx context.Context) error {
	c.notifyStatus()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !c.Tick() {
			c.clk.Sleep(c.idleDelay)
		}
	}
}

// Status returns a snapshot of the loop's state. It must be called
// from the loop goroutine; other goroutines should consume snapshots
// through the status callback.
func (c *Controller) Status() Status {
	return Status{
		Angles:   c.bank.Angles(),
		Flashing: c.ind.Flashing(),
		Lines:    c.lines,
		Accepted: c.accepted,
		Rejected: c.rejected,
	}
}

func (c *Controller) notifyStatus() {
	if c.statusCallback == nil {
		return
	}
	c.statusCallback(c.Status())
}
