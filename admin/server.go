// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/voxlane/voxlane/lib/codec"
)

// Handler is what the daemon exposes to the admin surface.
type Handler interface {
	// Status returns the current transport-layer summary.
	Status() Status

	// Collect runs one garbage-collection pass and returns the
	// number of generations destroyed.
	Collect() int

	// Reload re-reads the configuration, installs a new generation,
	// and collects. Returns the number of generations destroyed.
	Reload() (int, error)
}

// Server accepts admin connections on a Unix socket.
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger
	listener   net.Listener
}

// NewServer creates an admin server. Call Listen then Serve.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	return &Server{socketPath: socketPath, handler: handler, logger: logger}
}

// Listen binds the Unix socket, replacing a stale socket file left by
// a previous run. The socket is created owner-only: admin commands
// trigger reloads, so access equals control.
func (s *Server) Listen() error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("admin: removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("admin: listening on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("admin: restricting socket permissions: %w", err)
	}

	s.listener = listener
	return nil
}

// Serve accepts connections until ctx is cancelled. Each connection
// carries one request and one response.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return fmt.Errorf("admin: Serve called before Listen")
	}

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		connection, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("admin: accept: %w", err)
		}
		go s.handleConnection(connection)
	}
}

// Close releases the listener and removes the socket file.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	os.Remove(s.socketPath)
	return err
}

func (s *Server) handleConnection(connection net.Conn) {
	defer connection.Close()
	connection.SetDeadline(time.Now().Add(30 * time.Second))

	var request Request
	if err := codec.NewDecoder(connection).Decode(&request); err != nil {
		s.logger.Warn("malformed admin request", "error", err)
		return
	}

	response := s.dispatch(request)
	if err := codec.NewEncoder(connection).Encode(response); err != nil {
		s.logger.Warn("failed to send admin response", "action", request.Action, "error", err)
	}
}

func (s *Server) dispatch(request Request) Response {
	switch request.Action {
	case ActionStatus:
		status := s.handler.Status()
		return Response{OK: true, Status: &status}

	case ActionCollect:
		collected := s.handler.Collect()
		s.logger.Info("admin collect", "collected", collected)
		return Response{OK: true, Collected: collected}

	case ActionReload:
		collected, err := s.handler.Reload()
		if err != nil {
			s.logger.Error("admin reload failed", "error", err)
			return Response{Error: err.Error()}
		}
		s.logger.Info("admin reload", "collected", collected)
		return Response{OK: true, Collected: collected}

	default:
		return Response{Error: fmt.Sprintf("unknown action %q", request.Action)}
	}
}
