// Package renderbridge implements the TCP server component of the remote
// rendering bridge: it accepts client connections, frames messages off the
// wire, and drives one dispatch.Dispatcher per connection, holding every
// accepted connection open concurrently rather than serving one at a time.
package renderbridge

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/lumenforge/renderbridge/device"
)

// Config holds the configuration for a Server.
type Config struct {
	// Listener is the TCP address to accept connections on, e.g. ":31050".
	Listener string
	// Library loads the render device every connection's dispatcher talks
	// to. If nil, New panics — a server with no backend cannot do anything
	// useful (the caller is expected to default to device/stub).
	Library device.Library
	// Logger receives one line per connection lifecycle event and per
	// device.StatusFunc callback. If nil, log.Default() is used.
	Logger *log.Logger
}

// Server accepts remote rendering bridge connections and serves them until
// Stop is called or the given context is cancelled.
type Server struct {
	listener string
	library  device.Library
	logger   *log.Logger

	mu    sync.Mutex
	ln    net.Listener
	wg    sync.WaitGroup
	conns map[*Connection]struct{}
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Library == nil {
		panic("renderbridge: Config.Library must not be nil")
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		listener: config.Listener,
		library:  config.Library,
		logger:   logger,
		conns:    make(map[*Connection]struct{}),
	}
}

// Serve starts the server's accept loop and blocks until ctx is cancelled or
// an unrecoverable listener error occurs. A background goroutine closes the
// listener on ctx.Done, turning the accept loop's resulting error into a
// clean return instead of a crash.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listener)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Printf("renderbridge: listening on %s", s.listener)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if isClosedListenerError(err) {
				s.logger.Printf("renderbridge: listener closed, stopping accept loop")
				s.wg.Wait()
				return nil
			}
			s.logger.Printf("renderbridge: accept failed: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// Addr returns the address Serve is listening on, or nil if Serve has not
// started listening yet. Useful for tests that bind to ":0" and need the
// OS-assigned port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop closes the listener, which unblocks Serve's accept loop. It does
// not forcibly close in-flight connections; Serve waits for them to drain
// before returning.
func (s *Server) Stop() {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
}

func (s *Server) serveConn(raw net.Conn) {
	defer s.wg.Done()

	c := newConnection(raw, s.library, s.logger)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
	}()

	c.run()
}

func isClosedListenerError(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}
