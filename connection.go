package renderbridge

import (
	"errors"
	"io"
	"log"
	"net"

	"github.com/lumenforge/renderbridge/device"
	"github.com/lumenforge/renderbridge/dispatch"
	"github.com/lumenforge/renderbridge/wire"
)

// Connection owns one client's TCP socket and its dispatcher. Both
// directions share one socket, so the reader goroutine drives the
// dispatcher directly and posts replies through a queue.Queue to a single
// writer goroutine, keeping exactly one goroutine touching the socket for
// writes.
type Connection struct {
	conn   net.Conn
	disp   *dispatch.Dispatcher
	logger *log.Logger
	writes *queueAdapter
}

func newConnection(conn net.Conn, lib device.Library, logger *log.Logger) *Connection {
	c := &Connection{conn: conn, logger: logger}
	c.disp = dispatch.New(lib, c.logStatus)
	c.writes = newQueueAdapter(conn, logger)
	return c
}

func (c *Connection) logStatus(sev wire.Severity, message string) {
	c.logger.Printf("renderbridge: %s [%s] %s", c.conn.RemoteAddr(), sev, message)
}

// run reads frames until the connection closes or a fatal dispatcher error
// occurs, driving replies through the write queue as they're produced. It
// blocks until the connection is fully torn down.
func (c *Connection) run() {
	addr := c.conn.RemoteAddr()
	c.logger.Printf("renderbridge: connection from %s", addr)

	go c.writes.run()
	defer func() {
		c.writes.close()
		c.conn.Close()
		c.logger.Printf("renderbridge: connection from %s closed", addr)
	}()

	for {
		f, err := wire.ReadFrame(c.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Printf("renderbridge: %s: read failed: %v", addr, err)
			}
			return
		}

		replies, err := c.disp.Handle(f)
		if err != nil {
			var fatal *dispatch.FatalError
			if errors.As(err, &fatal) {
				c.logger.Printf("renderbridge: %s: fatal: %v", addr, fatal)
			}
			return
		}

		for _, reply := range replies {
			reply := reply
			c.writes.post(reply)
		}
	}
}
