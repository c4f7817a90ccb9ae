package host

import (
	"fmt"
	"sync"

	"github.com/matsen/coviz/internal/layout"
)

// Engine computes a layout. The default is layout.Run with size-derived
// tuning.
type Engine func(layout.Input) (*layout.Result, error)

// DefaultEngine runs the full layout pipeline.
func DefaultEngine(in layout.Input) (*layout.Result, error) {
	return layout.Run(in)
}

// Worker runs computations away from the caller's goroutine. It receives
// Messages and answers on Replies; it shares nothing with the host but the
// two channels.
type Worker interface {
	// Post hands a message to the worker.
	Post(Message) error

	// Replies delivers answers in the order they were produced. It is
	// closed once the worker has stopped.
	Replies() <-chan Reply

	// Terminate stops the worker. A computation in progress runs to
	// completion and its reply is discarded.
	Terminate()
}

// WorkerFactory constructs a worker around engine.
type WorkerFactory func(engine Engine) (Worker, error)

// goroutineWorker is the default Worker: one goroutine draining an inbox.
type goroutineWorker struct {
	inbox   chan Message
	replies chan Reply
	done    chan struct{}
	once    sync.Once
}

// NewGoroutineWorker starts a worker goroutine that runs engine for every
// compute message.
func NewGoroutineWorker(engine Engine) (Worker, error) {
	if engine == nil {
		return nil, fmt.Errorf("starting layout worker: nil engine")
	}
	w := &goroutineWorker{
		inbox:   make(chan Message, 1),
		replies: make(chan Reply, 1),
		done:    make(chan struct{}),
	}
	go w.loop(engine)
	return w, nil
}

// loop closes replies on exit.
func (w *goroutineWorker) loop(engine Engine) {
	defer close(w.replies)
	for {
		select {
		case <-w.done:
			return
		case msg := <-w.inbox:
			reply := handle(engine, msg)
			select {
			case w.replies <- reply:
			case <-w.done:
				return
			}
		}
	}
}

func (w *goroutineWorker) Post(msg Message) error {
	select {
	case <-w.done:
		return ErrWorkerTerminated
	default:
	}
	select {
	case w.inbox <- msg:
		return nil
	case <-w.done:
		return ErrWorkerTerminated
	}
}

func (w *goroutineWorker) Replies() <-chan Reply {
	return w.replies
}

func (w *goroutineWorker) Terminate() {
	w.once.Do(func() { close(w.done) })
}

// handle runs one message and converts every failure, panics included, into
// an error reply.
func handle(engine Engine, msg Message) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			reply = Reply{Type: ReplyError, ID: msg.ID, Error: fmt.Sprintf("layout panicked: %v", r)}
		}
	}()

	if msg.Type != MessageCompute {
		return Reply{Type: ReplyError, ID: msg.ID, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
	res, err := engine(msg.Input)
	if err != nil {
		return Reply{Type: ReplyError, ID: msg.ID, Error: err.Error()}
	}
	conv := res.Convergence
	return Reply{Type: ReplyResult, ID: msg.ID, Positions: res.Positions, Convergence: &conv}
}
