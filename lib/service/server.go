// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bureau-foundation/boxoffice/lib/command"
)

// Defaults applied by NewServer to zero Config fields.
const (
	DefaultPayloadTimeout = 5 * time.Minute
	DefaultWriteTimeout   = 10 * time.Second
	DefaultMaxRequestSize = 1024 * 1024
)

// ScriptRunner replays submitted scripts. [*script.Engine] implements
// it.
type ScriptRunner interface {
	Run(ctx context.Context, path, content string, origin command.Origin) string
}

// Config controls per-connection limits.
type Config struct {
	// IdleTimeout bounds the wait for the next request. Zero means
	// connections may stay idle indefinitely.
	IdleTimeout time.Duration

	// PayloadTimeout bounds the wait for the payload after a
	// need_payload response. The client is typically prompting a human
	// in this window.
	PayloadTimeout time.Duration

	// WriteTimeout bounds each response write.
	WriteTimeout time.Duration

	// MaxConnections limits concurrently served connections. Further
	// connections wait in the listen backlog. Zero means unlimited.
	MaxConnections int64

	// MaxRequestSize bounds the bytes read for a single request.
	MaxRequestSize int64
}

// Server accepts connections and runs a session on each.
type Server struct {
	dispatcher command.Dispatcher
	scripts    ScriptRunner
	config     Config
	logger     *slog.Logger

	limit *semaphore.Weighted

	mu          sync.Mutex
	connections map[net.Conn]struct{}
	closed      bool

	// activeConnections tracks session goroutines. Serve waits for
	// all of them before returning.
	activeConnections sync.WaitGroup
}

// NewServer creates a server. Zero timeouts and sizes in config take
// the package defaults, except IdleTimeout and MaxConnections where
// zero means no limit.
func NewServer(dispatcher command.Dispatcher, scripts ScriptRunner, config Config, logger *slog.Logger) *Server {
	if config.PayloadTimeout <= 0 {
		config.PayloadTimeout = DefaultPayloadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	if config.MaxRequestSize <= 0 {
		config.MaxRequestSize = DefaultMaxRequestSize
	}
	server := &Server{
		dispatcher:  dispatcher,
		scripts:     scripts,
		config:      config,
		logger:      logger,
		connections: make(map[net.Conn]struct{}),
	}
	if config.MaxConnections > 0 {
		server.limit = semaphore.NewWeighted(config.MaxConnections)
	}
	return server
}

// ListenAndServe listens on the TCP address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	var listenConfig net.ListenConfig
	listener, err := listenConfig.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled. On
// cancellation it closes the listener and every live connection, then
// waits for all sessions to exit. Serve always closes listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		listener.Close()
		s.closeAll()
	})
	defer stop()
	defer listener.Close()

	s.logger.Info("server listening", "address", listener.Addr().String())

	// Backoff after failed accepts, e.g. when out of file descriptors.
	var retryDelay time.Duration
	for {
		if s.limit != nil {
			if err := s.limit.Acquire(ctx, 1); err != nil {
				break
			}
		}

		conn, err := listener.Accept()
		if err != nil {
			s.release()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			retryDelay = nextAcceptDelay(retryDelay)
			s.logger.Error("accept failed", "error", err, "retry_in", retryDelay)
			if !sleepContext(ctx, retryDelay) {
				break
			}
			continue
		}
		retryDelay = 0

		if !s.track(conn) {
			conn.Close()
			s.release()
			break
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			defer s.release()
			defer s.untrack(conn)
			s.handleConnection(ctx, conn)
		}()
	}

	s.closeAll()
	s.activeConnections.Wait()
	s.logger.Info("server stopped")
	return nil
}

// Accept retry delays double from minAcceptDelay up to maxAcceptDelay.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

func nextAcceptDelay(previous time.Duration) time.Duration {
	if previous == 0 {
		return minAcceptDelay
	}
	return min(previous*2, maxAcceptDelay)
}

// sleepContext waits for d and reports whether ctx was still live.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	logger := s.logger.With("remote", remote)
	logger.Debug("connection opened")

	newSession(conn, s.dispatcher, s.scripts, s.config, logger).run(ctx)

	logger.Debug("connection closed")
}

func (s *Server) release() {
	if s.limit != nil {
		s.limit.Release(1)
	}
}

// track registers a live connection. Returns false once the server
// is shutting down.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.connections[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, conn)
}

// closeAll closes every live connection and refuses new ones. Closing
// unblocks sessions waiting on a read at any suspension point.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.connections {
		conn.Close()
	}
}
