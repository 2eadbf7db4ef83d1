// Command servod drives a bank of hobby servos from line-oriented
// text commands. Lines arrive over a serial port, a TCP socket, or
// the monitor websocket; a modbus front panel provides the reset
// button and status pixels. The -sim flag replaces all hardware with
// simulators.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/hexwalk/servo_interface/controller"
	"github.com/hexwalk/servo_interface/internal/clock"
	"github.com/hexwalk/servo_interface/led"
	"github.com/hexwalk/servo_interface/maestro"
	"github.com/hexwalk/servo_interface/panel"
	"github.com/hexwalk/servo_interface/proto"
	"github.com/hexwalk/servo_interface/servo"
	"github.com/hexwalk/servo_interface/simulator"
	"github.com/hexwalk/servo_interface/stream"
)

var (
	listenAddr    = flag.String("listen", "127.0.0.1:8502", "listen address for the monitor API")
	linesAddr     = flag.String("lines_listen", "", "optional TCP listen address accepting raw command lines")
	serialPort    = flag.String("serial", "", "serial port carrying command lines")
	serialBaud    = flag.Int("baud", 115200, "command serial baud rate")
	servoPort     = flag.String("servo_serial", "", "serial port of the servo board")
	servoBaud     = flag.Int("servo_baud", 115200, "servo board baud rate")
	panelPort     = flag.String("panel_serial", "", "serial port of the front panel")
	panelBaud     = flag.Int("panel_baud", 19200, "front panel baud rate")
	panelURL      = flag.String("panel_url", "", "remote panel_server URL instead of a local panel")
	panelPassword = flag.String("panel_password", "", "password for the remote panel bridge")
	channels      = flag.Int("channels", servo.DefaultChannels, "number of servo channels")
	pixels        = flag.Int("pixels", led.DefaultPixels, "number of status pixels")
	simulate      = flag.Bool("sim", false, "simulate all hardware")
)

func main() {
	flag.Parse()
	ctx := context.Background()
	g, ctx := errgroup.WithContext(ctx)

	server := NewServer()

	var (
		sink    servo.PulseSink
		strip   led.Strip
		trigger controller.Trigger
	)
	if *simulate {
		servos := simulator.NewServos()
		simStrip := simulator.NewStrip(*pixels)
		button := &simulator.Button{}
		g.Go(func() error { return servos.Run(ctx) })
		sink, strip, trigger = servos, simStrip, button
		server.sim = &simState{servos: servos, strip: simStrip, button: button}
	} else {
		board, err := maestro.Connect(*servoPort, *servoBaud)
		if err != nil {
			log.Fatalf("opening %q: %v", *servoPort, err)
		}
		g.Go(func() error { return board.PollErrors(ctx, time.Second) })
		sink = board
		if *panelPort != "" || *panelURL != "" {
			pnl, err := panel.Connect(ctx, panel.Config{
				Port:     *panelPort,
				BaudRate: *panelBaud,
				URL:      *panelURL,
				Password: *panelPassword,
				Pixels:   *pixels,
			})
			if err != nil {
				log.Fatalf("connecting panel: %v", err)
			}
			strip, trigger = pnl, pnl
		} else {
			// no panel; keep the indicator logic running in memory
			strip = simulator.NewStrip(*pixels)
		}
	}

	trim := servo.NewTrim(sink, *channels)
	bank := servo.NewBank(trim, *channels)
	lines := stream.NewLines(stream.DefaultLineQueueSize)

	var source proto.ByteSource
	if *serialPort != "" {
		source = stream.OpenSerial(ctx, *serialPort, *serialBaud)
	} else {
		source = stream.NewQueue(1)
	}
	if *linesAddr != "" {
		if _, err := stream.ListenLines(ctx, *linesAddr, lines); err != nil {
			log.Fatalf("listening on %q: %v", *linesAddr, err)
		}
	}

	events := newEventLog(128)
	ind := led.NewIndicator(strip, clock.Real{}, *pixels)
	ctl := controller.New(controller.Config{
		Source:         source,
		Injected:       lines,
		Bank:           bank,
		Indicator:      ind,
		Trigger:        trigger,
		Clock:          clock.Real{},
		Events:         events,
		StatusCallback: server.statusCallback,
	})
	server.lines = lines
	server.trim = trim
	server.events = events

	if err := bank.Init(); err != nil {
		log.Fatalf("initializing servos: %v", err)
	}
	if err := ind.Start(); err != nil {
		log.Printf("starting pixels: %v", err)
	}
	ind.Sweep()

	g.Go(func() error { return ctl.Run(ctx) })

	r := mux.NewRouter()
	r.HandleFunc("/api/status", server.StatusHandler)
	r.HandleFunc("/api/ws", server.StatusSocketHandler)
	r.HandleFunc("/api/events", server.EventsHandler)
	if *simulate {
		r.HandleFunc("/api/sim", server.SimHandler)
		r.HandleFunc("/api/sim/press", server.SimPressHandler)
	}
	srv := &http.Server{
		Handler:      r,
		Addr:         *listenAddr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-ctx.Done()
		return srv.Close()
	})

	err := g.Wait()
	// the loop has stopped; leave the servos unpowered
	if serr := bank.Shutdown(); serr != nil {
		log.Printf("disabling servos: %v", serr)
	}
	log.Fatal(err)
}
