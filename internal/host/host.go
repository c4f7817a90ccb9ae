// Package host schedules layout computations. Small graphs run inline on the
// caller's goroutine; larger ones are posted to a worker with a hard
// deadline. At most one computation is in flight per Host.
package host

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/matsen/coviz/internal/layout"
	"github.com/matsen/coviz/internal/metrics"
)

const (
	// DefaultThreshold is the node count at and above which computations go
	// to the worker.
	DefaultThreshold = 150

	// DefaultTimeout bounds a worker computation.
	DefaultTimeout = 30 * time.Second
)

// Mode is where a computation ran.
type Mode string

const (
	ModeSync   Mode = "sync"
	ModeWorker Mode = "worker"
)

// State is the host's dispatch state.
type State int

const (
	StateIdle State = iota
	StateDispatched
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatched:
		return "dispatched"
	default:
		return "unknown"
	}
}

// Host runs layouts one at a time.
type Host struct {
	threshold int
	timeout   time.Duration
	factory   WorkerFactory
	engine    Engine
	logger    *log.Logger
	metrics   *metrics.Metrics

	sem     *semaphore.Weighted
	closing chan struct{}

	mu          sync.Mutex
	worker      Worker
	unsupported bool
	closed      bool
	state       State
}

// Option configures a Host.
type Option func(*Host)

// WithThreshold sets the node count at which the worker takes over.
func WithThreshold(n int) Option {
	return func(h *Host) {
		h.threshold = n
	}
}

// WithTimeout sets the worker deadline.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithWorkerFactory sets how workers are constructed.
func WithWorkerFactory(f WorkerFactory) Option {
	return func(h *Host) {
		h.factory = f
	}
}

// WithEngine replaces the layout engine (for testing).
func WithEngine(e Engine) Option {
	return func(h *Host) {
		h.engine = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithMetrics records request outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// New creates a Host. The worker is constructed lazily on the first request
// that needs it.
func New(opts ...Option) *Host {
	h := &Host{
		threshold: DefaultThreshold,
		timeout:   DefaultTimeout,
		factory:   NewGoroutineWorker,
		engine:    DefaultEngine,
		sem:       semaphore.NewWeighted(1),
		closing:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	return h
}

// ComputeRequest strips req to its engine input and computes it on h.
func ComputeRequest[A, P any](ctx context.Context, h *Host, req layout.Request[A, P]) (layout.Positions, error) {
	return h.Compute(ctx, req.Input())
}

// Compute lays out in. It waits for any earlier computation to settle first.
// Errors are ErrTimeout, ErrCompute (wrapping layout input errors where
// applicable), ErrClosed or the context's error.
func (h *Host) Compute(ctx context.Context, in layout.Input) (layout.Positions, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	if h.isClosed() {
		return nil, ErrClosed
	}
	if err := layout.Validate(in); err != nil {
		return nil, &ComputeError{Message: err.Error(), Err: err}
	}

	h.setState(StateDispatched)
	defer h.setState(StateIdle)

	start := time.Now()
	mode := h.route(len(in.Nodes))

	var (
		pos  layout.Positions
		conv *layout.Convergence
		err  error
	)
	if mode == ModeWorker {
		var w Worker
		w, err = h.ensureWorker()
		if err != nil {
			h.logger.Warn("layout worker unavailable, computing inline", "err", err)
			mode = ModeSync
		} else {
			pos, conv, err = h.runWorker(ctx, w, in)
		}
	}
	if mode == ModeSync {
		pos, conv, err = h.runSync(in)
	}

	elapsed := time.Since(start)
	h.metrics.ObserveLayout(string(mode), outcome(err), len(in.Nodes), elapsed)
	if err != nil {
		h.logger.Error("layout failed", "mode", mode, "nodes", len(in.Nodes), "err", err)
		return nil, err
	}
	if conv != nil {
		h.metrics.ObserveIterations(conv.Iterations)
		h.logger.Debug("layout done", "mode", mode, "nodes", len(in.Nodes),
			"iterations", conv.Iterations, "converged", conv.Converged, "elapsed", elapsed)
	}
	return pos, nil
}

// State reports whether a computation is in flight.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Close terminates the worker. A computation waiting on the worker and later
// calls to Compute fail with ErrClosed.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.closing)
	}
	if h.worker != nil {
		h.worker.Terminate()
		h.worker = nil
	}
	return nil
}

func (h *Host) route(nodes int) Mode {
	if nodes < h.threshold {
		return ModeSync
	}
	return ModeWorker
}

func (h *Host) runSync(in layout.Input) (layout.Positions, *layout.Convergence, error) {
	reply := handle(h.engine, Message{Type: MessageCompute, ID: "inline", Input: in})
	if reply.Type == ReplyError {
		return nil, nil, &ComputeError{Message: reply.Error}
	}
	return reply.Positions, reply.Convergence, nil
}

func (h *Host) runWorker(ctx context.Context, w Worker, in layout.Input) (layout.Positions, *layout.Convergence, error) {
	id := uuid.NewString()
	if err := w.Post(Message{Type: MessageCompute, ID: id, Input: in}); err != nil {
		h.dropWorker(w)
		return nil, nil, &ComputeError{Message: "posting to worker: " + err.Error(), Err: err}
	}

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	for {
		select {
		case r, ok := <-w.Replies():
			if !ok {
				h.dropWorker(w)
				if h.isClosed() {
					return nil, nil, ErrClosed
				}
				return nil, nil, &ComputeError{Message: "worker exited", Err: ErrWorkerTerminated}
			}
			if r.ID != id {
				h.logger.Debug("dropping stale layout reply", "id", r.ID)
				continue
			}
			switch r.Type {
			case ReplyResult:
				return r.Positions, r.Convergence, nil
			case ReplyError:
				return nil, nil, &ComputeError{Message: r.Error}
			default:
				return nil, nil, &ComputeError{Message: "unknown reply type " + r.Type}
			}
		case <-timer.C:
			h.dropWorker(w)
			return nil, nil, &TimeoutError{After: h.timeout}
		case <-ctx.Done():
			h.dropWorker(w)
			return nil, nil, ctx.Err()
		case <-h.closing:
			h.dropWorker(w)
			return nil, nil, ErrClosed
		}
	}
}

// ensureWorker returns the current worker, constructing one if needed. A
// failed construction marks workers unsupported for the host's lifetime.
func (h *Host) ensureWorker() (Worker, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.worker != nil {
		return h.worker, nil
	}
	if h.unsupported {
		return nil, errUnsupported
	}
	w, err := h.factory(h.engine)
	if err != nil {
		h.unsupported = true
		return nil, err
	}
	h.worker = w
	return w, nil
}

// dropWorker terminates w and detaches it so the next request gets a fresh
// one. Whatever w produces afterwards is never read.
func (h *Host) dropWorker(w Worker) {
	w.Terminate()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.worker == w {
		h.worker = nil
	}
}

func (h *Host) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Host) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsTimeout(err):
		return "timeout"
	case IsComputeError(err):
		return "error"
	default:
		return "cancelled"
	}
}
