// Package server streams watched rows to websocket clients. Each
// client subscribes to the in-process event bus; slow clients are
// dropped by the bus rather than allowed to stall the watch session.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tailsv/internal/event"
	"tailsv/internal/logging"
	"tailsv/internal/record"
	"tailsv/internal/tail"
)

const writeDeadline = 10 * time.Second

// Event is the wire representation of everything a session emits.
type Event struct {
	Type      string      `json:"type"`
	Header    []string    `json:"header,omitempty"`
	Row       *record.Row `json:"row,omitempty"`
	Info      string      `json:"info,omitempty"`
	Size      int64       `json:"size,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// BusSink adapts a bus of wire events to the tail.Sink interface.
type BusSink struct {
	bus *event.Bus[Event]
}

func NewBusSink(bus *event.Bus[Event]) *BusSink {
	return &BusSink{bus: bus}
}

func (s *BusSink) OnHeader(fields []string) {
	s.bus.Publish(Event{Type: "header", Header: fields, Timestamp: time.Now().UTC()})
}

func (s *BusSink) OnRecord(row record.Row) {
	s.bus.Publish(Event{Type: "record", Row: &row, Timestamp: time.Now().UTC()})
}

func (s *BusSink) OnInfo(info tail.Info) {
	s.bus.Publish(Event{Type: "info", Info: string(info.Kind), Size: info.Size, Timestamp: time.Now().UTC()})
}

func (s *BusSink) OnError(err error) {
	s.bus.Publish(Event{Type: "error", Error: err.Error(), Timestamp: time.Now().UTC()})
}

// Server serves the /events websocket endpoint.
type Server struct {
	bus    *event.Bus[Event]
	logger *logging.Logger
	server *http.Server
}

func New(addr string, bus *event.Bus[Event], logger *logging.Logger) *Server {
	instance := &Server{bus: bus, logger: logger}
	mux := http.NewServeMux()
	mux.Handle("/events", http.HandlerFunc(instance.handleEvents))
	instance.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return instance
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		errs <- s.server.ListenAndServe()
	}()
	s.logger.Info("event stream listening", map[string]string{"addr": s.server.Addr})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errs:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	output, cancel := s.bus.Subscribe()
	if output == nil {
		http.Error(w, "event stream unavailable", http.StatusInternalServerError)
		return
	}
	defer cancel()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// The server binds to an operator-chosen address for local
		// inspection; no cross-origin restriction applies.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		// Reads are only used to observe the client going away.
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case wireEvent, ok := <-output:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				return
			}
			if err := conn.WriteJSON(wireEvent); err != nil {
				s.logger.Debug("event stream client dropped", map[string]string{
					"error": err.Error(),
				})
				return
			}
		case <-closed:
			return
		}
	}
}
