package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/arcadelab/gamehub/internal/services/auth"
	"github.com/arcadelab/gamehub/internal/services/catalog"
	"github.com/arcadelab/gamehub/internal/services/room"
)

// Config holds configuration for the lobby's TCP listener
type Config struct {
	Addr string
}

// DefaultConfig returns sensible defaults for the listener
func DefaultConfig() Config {
	return Config{
		Addr: "127.0.0.1:5555",
	}
}

// Server accepts client connections and runs one Session per
// connection. Closing the listener is the only shutdown primitive:
// sessions end when their clients disconnect.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	auth    *auth.Service
	catalog *catalog.Service
	rooms   *room.Manager

	listener net.Listener
}

// New creates a new lobby server
func New(cfg Config, authSvc *auth.Service, catalogSvc *catalog.Service, rooms *room.Manager, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		auth:    authSvc,
		catalog: catalogSvc,
		rooms:   rooms,
	}
}

// Listen binds the listener socket. Split from Serve so callers can
// learn the bound address before serving (tests bind port 0).
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.logger.Info("lobby listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listener address
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

// Serve runs the accept loop until the listener is closed
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		sess := newSession(conn, s.auth, s.catalog, s.rooms, s.logger)
		go sess.serve(ctx)
	}
}

// Shutdown closes the listener, unblocking the accept loop. Live
// sessions and spawned workers are left to drain on their own; the
// caller persists the state snapshot.
func (s *Server) Shutdown() error {
	if s.listener == nil {
		return nil
	}
	s.logger.Info("lobby shutting down")
	return s.listener.Close()
}
