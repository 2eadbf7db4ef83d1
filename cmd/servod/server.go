package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hexwalk/servo_interface/controller"
	"github.com/hexwalk/servo_interface/led"
	"github.com/hexwalk/servo_interface/servo"
	"github.com/hexwalk/servo_interface/simulator"
	"github.com/hexwalk/servo_interface/stream"
)

type simState struct {
	servos *simulator.Servos
	strip  *simulator.Strip
	button *simulator.Button
}

type Server struct {
	lines  *stream.Lines
	trim   *servo.Trim
	events *eventLog
	sim    *simState

	statusMu   sync.RWMutex
	statusCond *sync.Cond
	status     controller.Status
}

func NewServer() *Server {
	s := &Server{}
	s.statusCond = sync.NewCond(s.statusMu.RLocker())
	return s
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// statusPayload adds the trim table to the controller snapshot.
type statusPayload struct {
	controller.Status
	TrimOffsets []int `json:"trim_offsets"`
}

func (s *Server) payload(status controller.Status) statusPayload {
	return statusPayload{Status: status, TrimOffsets: s.trim.Offsets()}
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	s.statusMu.RLock()
	status := s.status
	s.statusMu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(s.payload(status))
	if err != nil {
		log.Print(err)
		return
	}
	w.Write(data)
}

func (s *Server) EventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(s.events.Snapshot())
	if err != nil {
		log.Print(err)
		return
	}
	w.Write(data)
}

type Command struct {
	Command string `json:"command"`
	Line    string `json:"line"`
	Channel int    `json:"channel"`
	Offset  int    `json:"offset"`
}

func (s *Server) StatusSocketHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, cancel := context.WithCancel(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	// Read and process incoming messages
	go func() {
		for {
			var msg Command
			if err := conn.ReadJSON(&msg); err != nil {
				cancel()
				conn.Close()
				break
			}
			switch msg.Command {
			case "send_line":
				if !s.lines.Push(msg.Line) {
					log.Printf("line queue full; dropped %q", msg.Line)
				}
			case "set_trim":
				if err := s.trim.SetOffset(msg.Channel, msg.Offset); err != nil {
					log.Printf("setting trim: %v", err)
				}
			}
		}
	}()

	send := func(status controller.Status) {
		data, err := json.Marshal(s.payload(status))
		if err != nil {
			log.Print(err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Print(err)
			return
		}
	}

	s.statusMu.RLock()
	status := s.status
	s.statusMu.RUnlock()
	send(status)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.statusMu.RLock()
		s.statusCond.Wait()
		status := s.status
		s.statusMu.RUnlock()
		send(status)
	}
}

func (s *Server) statusCallback(status controller.Status) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status = status
	s.statusCond.Broadcast()
}

type simPayload struct {
	Servos  map[int]simulator.State `json:"servos"`
	Pixels  []led.Color             `json:"pixels"`
	Started bool                    `json:"started"`
	Button  bool                    `json:"button"`
}

func (s *Server) SimHandler(w http.ResponseWriter, r *http.Request) {
	payload := simPayload{
		Servos:  s.sim.servos.States(),
		Pixels:  s.sim.strip.Colors(),
		Started: s.sim.strip.Started(),
		Button:  s.sim.button.Read(),
	}
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(payload)
	if err != nil {
		log.Print(err)
		return
	}
	w.Write(data)
}

func (s *Server) SimPressHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	// momentary press; the control loop polls every tick
	s.sim.button.Press()
	time.AfterFunc(200*time.Millisecond, s.sim.button.Release)
	w.WriteHeader(http.StatusNoContent)
}
