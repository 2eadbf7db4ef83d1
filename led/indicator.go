// Package led drives the status pixel bar on the controller.
package led

import (
	"log"
	"time"

	"github.com/hexwalk/servo_interface/internal/clock"
)

// Color is an RGB triple. Values are raw pixel brightness.
type Color struct {
	R, G, B uint8
}

// Strip is the pixel hardware.
type Strip interface {
	// SetColor sets one pixel.
	SetColor(index int, c Color) error
	// Clear blanks every pixel.
	Clear() error
	// Start brings up the strip driver.
	Start() error
}

// DefaultPixels matches the six pixel bar on the stock board.
const DefaultPixels = 6

// FlashDuration is how long the activity flash stays lit after a
// command line arrives.
const FlashDuration = 150 * time.Millisecond

var (
	readyColor = Color{R: 0, G: 12, B: 0}
	flashColor = Color{R: 0, G: 24, B: 48}
	sweepColor = Color{R: 48, G: 16, B: 0}
)

// Indicator is the status state machine: a steady ready color,
// interrupted by a short flash whenever a command line arrives. All
// methods are called from the control loop goroutine.
type Indicator struct {
	strip  Strip
	clk    clock.Clock
	pixels int

	flashing bool
	expiry   time.Time
}

// NewIndicator returns an indicator over the given strip. pixels <= 0
// selects DefaultPixels.
func NewIndicator(strip Strip, clk clock.Clock, pixels int) *Indicator {
	if pixels <= 0 {
		pixels = DefaultPixels
	}
	return &Indicator{strip: strip, clk: clk, pixels: pixels}
}

// Start brings up the strip and paints the ready state.
func (i *Indicator) Start() error {
	if err := i.strip.Start(); err != nil {
		return err
	}
	i.ready()
	return nil
}

// Flash records line arrival: the flash color is shown and the expiry
// pushed out, so back-to-back lines hold the flash lit.
func (i *Indicator) Flash() {
	if !i.flashing {
		i.setAll(flashColor)
		i.flashing = true
	}
	i.expiry = i.clk.Now().Add(FlashDuration)
}

// Tick returns the strip to ready once the flash window has passed.
func (i *Indicator) Tick() {
	if i.flashing && !i.clk.Now().Before(i.expiry) {
		i.ready()
	}
}

// Flashing reports whether the activity flash is currently lit.
func (i *Indicator) Flashing() bool {
	return i.flashing
}

func (i *Indicator) ready() {
	i.setAll(readyColor)
	i.flashing = false
}

func (i *Indicator) setAll(c Color) {
	for p := 0; p < i.pixels; p++ {
		if err := i.strip.SetColor(p, c); err != nil {
			log.Printf("setting pixel %d: %v", p, err)
		}
	}
}
