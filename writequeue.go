package renderbridge

import (
	"log"
	"net"
	"sync"

	"github.com/lumenforge/renderbridge/queue"
	"github.com/lumenforge/renderbridge/wire"
)

// writeQueueCapacity bounds how many reply frames can be pending before a
// slow client backpressures the dispatcher goroutine.
const writeQueueCapacity = 64

// queueAdapter serializes wire.Frame writes onto one connection through a
// queue.Queue, so the reader/dispatcher goroutine never touches the socket
// for writes itself.
type queueAdapter struct {
	conn   net.Conn
	logger *log.Logger
	q      *queue.Queue

	mu     sync.Mutex
	closed bool
}

func newQueueAdapter(conn net.Conn, logger *log.Logger) *queueAdapter {
	return &queueAdapter{conn: conn, logger: logger, q: queue.New(writeQueueCapacity)}
}

func (w *queueAdapter) run() {
	w.q.Run()
}

func (w *queueAdapter) post(f wire.Frame) {
	w.q.Post(func() {
		if err := wire.WriteFrame(w.conn, f.Opcode, f.Payload); err != nil {
			w.logger.Printf("renderbridge: %s: write failed: %v", w.conn.RemoteAddr(), err)
		}
	})
}

func (w *queueAdapter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.q.Close()
}
