// Package modbus wraps the goburrow client with reconnect handling
// and the register helpers the front panel needs.
package modbus

import (
	"context"
	"encoding/binary"
	"log"
	"time"

	"github.com/goburrow/modbus"

	"github.com/hexwalk/servo_interface/internal/modbus/modbushttp"
)

type modbusHandler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Client wraps a goburrow modbus client with a reconnect loop and a
// poll hook. Setting URL selects a remote bridge; otherwise Port and
// BaudRate select a local RTU serial connection.
type Client struct {
	// Port and BaudRate create a local serial connection.
	Port string
	// BaudRate defaults to 19200.
	BaudRate int
	SlaveId  byte
	// URL creates a remote connection through a bridge.
	URL string
	// Password authenticates against the remote bridge.
	Password string

	// Poll function to be called in a loop while the connection is
	// active.
	Poll func() error

	handler modbusHandler
	modbus.Client
}

func (c *Client) Connect(ctx context.Context) error {
	if c.URL != "" {
		c.handler = modbushttp.NewClient(c.URL, c.Password)
	} else {
		baud := c.BaudRate
		if baud == 0 {
			baud = 19200
		}
		handler := modbus.NewRTUClientHandler(c.Port)
		handler.BaudRate = baud
		handler.DataBits = 8
		handler.Parity = "N"
		handler.StopBits = 1
		handler.Timeout = 1 * time.Second
		handler.SlaveId = c.SlaveId
		c.handler = handler
	}
	c.Client = modbus.NewClient(c.handler)
	go c.reconnectLoop(ctx)
	return nil
}

func (c *Client) reconnectLoop(ctx context.Context) {
	port := c.URL
	if port == "" {
		port = c.Port
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}

		err := c.handler.Connect()
		if err != nil {
			log.Printf("opening %q: %v", port, err)
			continue
		}
		if err := c.watch(ctx); err != nil {
			log.Printf("watching %q: %v", port, err)
		}
	}
}

func (c *Client) watch(ctx context.Context) error {
	defer c.handler.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Poll(); err != nil {
			return err
		}
	}
}

// WriteCoil writes a single coil using the modbus on/off convention.
func (c *Client) WriteCoil(coil int, value bool) error {
	var v uint16
	if value {
		v = 0xFF00
	}
	_, err := c.WriteSingleCoil(uint16(coil), v)
	return err
}

// WriteRegisters writes consecutive holding registers starting at
// addr in one transaction.
func (c *Client) WriteRegisters(addr int, values ...uint16) error {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(data[2*i:], v)
	}
	_, err := c.WriteMultipleRegisters(uint16(addr), uint16(len(values)), data)
	return err
}

// BytesToBits expands a packed modbus bit response.
func BytesToBits(bs []byte) []bool {
	var out []bool
	for _, b := range bs {
		for i := 0; i < 8; i++ {
			out = append(out, (b>>uint(i)&1) == 1)
		}
	}
	return out
}
