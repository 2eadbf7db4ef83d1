package stream

import (
	"context"
	"log"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/sync/errgroup"
)

// Serial feeds bytes from a serial port into a queue, reopening the
// port whenever it fails. A missing device at start is not fatal; the
// loop keeps retrying.
type Serial struct {
	q *Queue
}

// OpenSerial starts reading the named port in the background.
func OpenSerial(ctx context.Context, name string, baud int) *Serial {
	s := &Serial{q: NewQueue(0)}
	go s.reconnectLoop(ctx, name, baud)
	return s
}

// TryReadByte returns the next received byte if one is ready.
func (s *Serial) TryReadByte() (byte, bool) {
	return s.q.TryReadByte()
}

func (s *Serial) reconnectLoop(ctx context.Context, name string, baud int) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}
		c := &serial.Config{Name: name, Baud: baud}
		port, err := serial.OpenPort(c)
		if err != nil {
			log.Printf("opening %q: %v", name, err)
			continue
		}
		log.Printf("opened %q", name)
		if err := s.watch(ctx, port); err != nil {
			log.Printf("reading %q: %v", name, err)
		}
	}
}

func (s *Serial) watch(ctx context.Context, port *serial.Port) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Wait for context to be canceled, then close the port to
		// unblock the read.
		<-ctx.Done()
		return port.Close()
	})
	g.Go(func() error {
		buf := make([]byte, 256)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				if pushed := s.q.Push(buf[:n]); pushed < n {
					log.Printf("input queue full; dropped %d bytes", n-pushed)
				}
			}
			if err != nil {
				return err
			}
		}
	})
	return g.Wait()
}
