package responder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/danmuck/mctp/internal/observability"
	"github.com/danmuck/mctp/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConnPhase names one step of a connection's single exchange.
type ConnPhase string

const (
	PhaseConnected       ConnPhase = "connected"
	PhaseAwaitingRequest ConnPhase = "awaiting_request"
	PhaseResolving       ConnPhase = "resolving"
	PhaseResponding      ConnPhase = "responding"
	PhaseClosed          ConnPhase = "closed"
)

// Service runs the MCTP accept loop over a Server.
type Service struct {
	cfg    Config
	server *Server

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	active atomic.Int64
	ready  atomic.Bool
}

func NewService() *Service {
	return NewServiceWithConfig(DefaultConfig())
}

// NewServiceWithConfig serves documents from cfg.ContentRoot.
func NewServiceWithConfig(cfg Config) *Service {
	cfg = cfg.WithDefaults()
	return NewServiceWithStore(cfg, NewDirStore(cfg.ContentRoot))
}

// NewServiceWithStore serves documents from an explicit store.
func NewServiceWithStore(cfg Config, store DocumentStore) *Service {
	cfg = cfg.WithDefaults()
	return &Service{
		cfg:    cfg,
		server: NewServer(cfg.Routes, store),
		conns:  make(map[net.Conn]struct{}),
	}
}

func (s *Service) Server() *Server {
	return s.server
}

func (s *Service) Config() Config {
	return s.cfg
}

// Ready reports whether Serve is accepting connections.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// Run listens on the configured address and blocks until SIGINT/SIGTERM.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

// RunContext listens on the configured address and blocks until ctx ends.
// Both listeners are bound before anything is served; when either loop
// fails the other is stopped and drained before RunContext returns.
func (s *Service) RunContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	var adminLn net.Listener
	if addr := strings.TrimSpace(s.cfg.AdminAddr); addr != "" {
		adminLn, err = net.Listen("tcp", addr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("responder: admin listen %s: %w", addr, err)
		}
	}
	log.Info().
		Str("node", s.cfg.NodeID).
		Str("addr", ln.Addr().String()).
		Str("content_root", s.cfg.ContentRoot).
		Int("routes", len(s.cfg.Routes)).
		Msg("mctp.responder listening")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	adminErr := make(chan error, 1)
	if adminLn != nil {
		go func() {
			adminErr <- s.serveAdmin(ctx, adminLn)
		}()
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ctx, ln)
	}()

	select {
	case err = <-serveErr:
		cancel()
		if adminLn != nil {
			if aerr := <-adminErr; err == nil {
				err = aerr
			}
		}
	case err = <-adminErr:
		cancel()
		if serr := <-serveErr; err == nil {
			err = serr
		}
	}
	return err
}

// Serve accepts connections on ln until ctx ends or ln fails. Each
// connection is handled on its own goroutine.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.closeAllConns()
			_ = ln.Close()
		case <-stopped:
		}
	}()

	s.ready.Store(true)
	defer s.ready.Store(false)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.trackConn(conn)
		go s.handleConn(conn)
	}
}

func (s *Service) handleConn(conn net.Conn) {
	start := time.Now()
	defer conn.Close()
	defer s.untrackConn(conn)
	defer observability.ConnOpened(s.cfg.NodeID)()

	active := s.active.Add(1)
	defer s.active.Add(-1)

	logger := log.With().
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	phase := func(p ConnPhase) {
		logger.Trace().Str("phase", string(p)).Int64("active", active).Msg("mctp.conn")
	}
	phase(PhaseConnected)
	defer phase(PhaseClosed)

	phase(PhaseAwaitingRequest)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	path, err := protocol.ReadRequest(conn, s.cfg.MaxRequestBytes)
	if err != nil {
		observability.RecordConnError(s.cfg.NodeID, "read")
		logger.Warn().Err(err).Msg("mctp.conn read request")
		return
	}

	phase(PhaseResolving)
	ex := s.server.Respond(path)

	phase(PhaseResponding)
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := protocol.WriteResponse(conn, ex.Response); err != nil {
		observability.RecordConnError(s.cfg.NodeID, "write")
		logger.Warn().Err(err).Msg("mctp.conn write response")
		return
	}
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}

	observability.RecordExchange(s.cfg.NodeID, ex.Response.Status, len(ex.Response.Body), time.Since(start))
	logExchange(logger, ex, time.Since(start))
}

func logExchange(logger zerolog.Logger, ex Exchange, took time.Duration) {
	event := logger.Info()
	if ex.LookupErr != nil {
		event = logger.Warn().Err(ex.LookupErr)
	}
	event.
		Str("path", ex.Path).
		Str("document", ex.DocumentID).
		Str("status", ex.Response.Status).
		Int("bytes", len(ex.Response.Body)).
		Dur("duration", took).
		Msg("mctp.exchange")
}

func (s *Service) serveAdmin(ctx context.Context, ln net.Listener) error {
	addr := ln.Addr().String()
	srv := &http.Server{
		Handler: observability.NewAdminRouter(observability.AdminConfig{
			Node:        s.cfg.NodeID,
			Addr:        addr,
			CorsOrigins: s.cfg.CorsOrigins,
			Ready:       s.Ready,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("mctp.admin listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) trackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Service) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

func (s *Service) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}
