// Package server runs the pad session listener: one goroutine per
// accepted connection, handshake against the slot registry, then the
// frame loop. The Service type also implements the start/stop
// supervisor surface the admin channel drives.
package server

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/virtualpad/server/internal/pad"
)

var (
	ErrAlreadyRunning = errors.New("pad server already running")
	ErrNotRunning     = errors.New("pad server not running")
)

// Service owns the pad TCP listener and its connections.
type Service struct {
	registry    *pad.Registry
	addr        string
	keepalive   time.Duration
	authTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
}

// New builds a stopped service. keepalive bounds the silence tolerated
// on an authenticated connection before its slot is released; zero
// disables the policy. authTimeout bounds how long a fresh connection
// may sit without completing the handshake.
func New(registry *pad.Registry, addr string, keepalive, authTimeout time.Duration) *Service {
	return &Service{
		registry:    registry,
		addr:        addr,
		keepalive:   keepalive,
		authTimeout: authTimeout,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and begins accepting pad connections.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return ErrAlreadyRunning
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	go s.acceptLoop(ln)
	log.Printf("pad server listening on %s", ln.Addr())
	return nil
}

// Stop closes the listener, drops every open pad connection and
// force-clears all slots. The service can be started again afterwards.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return ErrNotRunning
	}
	ln := s.listener
	s.listener = nil
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.conns = make(map[net.Conn]struct{})
	s.mu.Unlock()

	ln.Close()
	for _, c := range conns {
		c.Close()
	}
	s.registry.ClearAll()
	log.Printf("pad server stopped")
	return nil
}

// IsRunning reports whether the listener is up.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// Addr returns the bound listener address, or "" when stopped.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Service) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("pad server accept error: %v", err)
			}
			return
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		go s.handle(conn)
	}
}

func (s *Service) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Service) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}
