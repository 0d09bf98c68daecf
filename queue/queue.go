// Package queue implements the single-consumer work queue that is the only
// channel the reader/dispatcher goroutine and the writer goroutine share.
// It serializes every outbound write onto one goroutine so frame bytes from
// concurrent replies never interleave on the wire.
package queue

// Task is a unit of work posted to a Queue — in practice, "write this
// framed message" or "close this connection".
type Task func()

// Queue is a bounded FIFO of Tasks with exactly one consumer goroutine
// (Run) and any number of producers (Post). It exists so the reader
// goroutine, which may finish handling several messages before the writer
// drains any of them, never blocks on a slow network write except when the
// queue is genuinely full: nothing but Run ever writes to the socket.
type Queue struct {
	tasks chan Task
	done  chan struct{}
}

// New returns a Queue with room for capacity pending tasks before Post
// blocks.
func New(capacity int) *Queue {
	return &Queue{
		tasks: make(chan Task, capacity),
		done:  make(chan struct{}),
	}
}

// Post enqueues task. It blocks if the queue is full, which back-pressures
// the dispatcher against a writer that cannot keep up — the dispatcher
// stalls rather than letting unbounded memory pile up for a stuck client.
// Post is a no-op once Close has been called.
func (q *Queue) Post(task Task) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.tasks <- task:
	case <-q.done:
	}
}

// Run drains tasks until Close is called, executing each in order on the
// calling goroutine. Callers run this as the body of the single writer
// goroutine for a connection.
func (q *Queue) Run() {
	for {
		select {
		case task := <-q.tasks:
			task()
		case <-q.done:
			// Drain whatever is already buffered before exiting, so a
			// task posted just before Close still runs.
			for {
				select {
				case task := <-q.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Close stops Run once the queue drains and makes further Posts no-ops.
// Close is not idempotent: call it at most once; calling it twice panics,
// matching a close-of-closed-channel's usual Go semantics.
func (q *Queue) Close() {
	close(q.done)
}
