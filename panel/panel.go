// Package panel drives the operator front panel over modbus. The
// panel exposes the reset button as discrete input 0, the pixel
// supply as coil 0, and the RGB components of pixel i as holding
// registers 3*i through 3*i+2.
package panel

import (
	"context"
	"sync"

	"github.com/hexwalk/servo_interface/internal/modbus"
	"github.com/hexwalk/servo_interface/led"
)

type Config struct {
	// Port and BaudRate create a local serial connection.
	Port     string
	BaudRate int
	// URL creates a remote connection through a panel_server bridge.
	URL string
	// Password authenticates against the remote bridge.
	Password string
	// Pixels defaults to led.DefaultPixels.
	Pixels int
}

// Panel caches the button level from a poll loop and writes pixel
// registers synchronously. It satisfies controller.Trigger and
// led.Strip.
type Panel struct {
	mu      sync.Mutex
	client  *modbus.Client
	pixels  int
	pressed bool
}

func Connect(ctx context.Context, cfg Config) (*Panel, error) {
	pixels := cfg.Pixels
	if pixels <= 0 {
		pixels = led.DefaultPixels
	}
	p := &Panel{
		client: &modbus.Client{
			Port:     cfg.Port,
			BaudRate: cfg.BaudRate,
			SlaveId:  1,
			URL:      cfg.URL,
			Password: cfg.Password,
		},
		pixels: pixels,
	}
	p.client.Poll = p.pollOnce
	return p, p.client.Connect(ctx)
}

func (p *Panel) pollOnce() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inputs, err := p.client.ReadDiscreteInputs(0, 1)
	if err != nil {
		return err
	}
	p.pressed = modbus.BytesToBits(inputs)[0]
	return nil
}

// Read reports the button level from the last poll. The panel
// firmware debounces the switch.
func (p *Panel) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pressed
}

// SetColor writes one pixel's RGB registers.
func (p *Panel) SetColor(index int, c led.Color) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client.WriteRegisters(index*3, uint16(c.R), uint16(c.G), uint16(c.B))
}

// Clear blanks every pixel in one transaction.
func (p *Panel) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client.WriteRegisters(0, make([]uint16, p.pixels*3)...)
}

// Start switches the pixel supply on.
func (p *Panel) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client.WriteCoil(0, true)
}
