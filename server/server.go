// Package server exposes the pipeline's view surface to dashboard clients:
// a JSON snapshot endpoint for polling and a WebSocket push of snapshots on
// a fixed cadence.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/motortwin/motortwin/twin"
)

// SnapshotSource is the read-side of the pipeline.
type SnapshotSource interface {
	Snapshot() *twin.Snapshot
}

// Server serves the twin view over HTTP.
type Server struct {
	source   SnapshotSource
	interval time.Duration
	upgrader websocket.Upgrader
}

// New creates a server pushing WebSocket snapshots every interval.
func New(source SnapshotSource, interval time.Duration) *Server {
	return &Server{
		source:   source,
		interval: interval,
		upgrader: websocket.Upgrader{
			// The dashboard is served from a different origin in dev.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the route mux: GET /api/twin and GET /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/twin", s.handleSnapshot)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logrus.Infof("view server listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Snapshot()); err != nil {
		logrus.Debugf("snapshot encode: %v", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Debugf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Push the current state immediately, then on every tick.
	for {
		if err := conn.WriteJSON(s.source.Snapshot()); err != nil {
			logrus.Debugf("websocket write: %v", err)
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
