package actor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"mfcatalog/internal/catalog"
	"mfcatalog/internal/core/logger"
	"mfcatalog/internal/core/tracker"
	"mfcatalog/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultQueueSize = 256

var (
	// ErrClosed is returned by Submit once the actor has stopped accepting
	// requests.
	ErrClosed = errors.New("catalog closed")
	// ErrNoInitiator is returned by Submit for a request without an initiator.
	ErrNoInitiator = errors.New("request has no initiator")
)

// Option is an option for an actor.
type Option func(*Actor)

func WithLogger(log *logger.Logger) Option {
	return func(a *Actor) {
		a.log = log
	}
}

// WithName sets the catalog name reported in every request.
func WithName(name string) Option {
	return func(a *Actor) {
		a.name = name
	}
}

// WithQueueSize sets how many requests may wait before Submit blocks.
func WithQueueSize(size int) Option {
	return func(a *Actor) {
		a.queueSize = size
	}
}

// WithRegisterer registers the actor metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *Actor) {
		a.registerer = reg
	}
}

// Actor is the single owner of a catalog store and its cache. Requests are
// answered one at a time in the order they were queued.
type Actor struct {
	name       string
	queueSize  int
	registerer prometheus.Registerer

	store   *store.Store
	cache   *catalog.Cache
	log     *logger.Logger
	tracker *tracker.Tracker
	metrics *metrics

	queue    chan Request
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// mu guards closed against concurrent Submit calls; the queue itself is
	// only drained by Run.
	mu     sync.RWMutex
	closed bool
}

// New creates an actor owning s. The actor takes over closing the store.
func New(s *store.Store, opts ...Option) *Actor {
	a := &Actor{
		name:      filepath.Base(s.Path()),
		queueSize: defaultQueueSize,
		store:     s,
		cache:     catalog.NewCache(),
		stopping:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.NewLogger(logger.WithName("actor"))
	}
	a.queue = make(chan Request, max(0, a.queueSize))
	a.tracker = tracker.NewTracker(a.name)
	a.metrics = newMetrics(a.registerer)
	return a
}

// Name returns the catalog name.
func (a *Actor) Name() string {
	return a.name
}

// Tracker reports the actor status and request counters.
func (a *Actor) Tracker() *tracker.Tracker {
	return a.tracker
}

// Done is closed once Run has returned.
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Submit queues req. Its initiator is called exactly once with the finished
// request, unless Submit returns an error.
func (a *Actor) Submit(req Request) error {
	return a.SubmitContext(context.Background(), req)
}

// SubmitContext is Submit that gives up with ctx's error when the queue stays
// full until ctx is done.
func (a *Actor) SubmitContext(ctx context.Context, req Request) error {
	base := req.Base()
	if base.Initiator == nil {
		return ErrNoInitiator
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	base.Submitted = time.Now()
	a.metrics.queueDepth.Inc()
	select {
	case a.queue <- req:
		return nil
	case <-a.stopping:
		a.metrics.queueDepth.Dec()
		return ErrClosed
	case <-ctx.Done():
		a.metrics.queueDepth.Dec()
		return ctx.Err()
	}
}

// Do submits req and waits for it to finish. req must not be touched until Do
// returns nil, since the actor fills in its results.
func (a *Actor) Do(ctx context.Context, req Request) error {
	base := req.Base()
	finished := make(chan struct{})
	next := base.Initiator
	base.Initiator = InitiatorFunc(func(r Request) {
		if next != nil {
			next.ProcessResult(r)
		}
		close(finished)
	})

	if err := a.SubmitContext(ctx, req); err != nil {
		base.Initiator = next
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close asks the actor to stop after the requests already queued and waits
// until it has. Closing a stopped actor is a no-op.
func (a *Actor) Close(ctx context.Context) error {
	err := a.Submit(NewLifecycleRequest(CommandClose, InitiatorFunc(func(Request) {})))
	if err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run answers requests until a close request is processed or ctx is
// cancelled. A request already taken from the queue always finishes; the
// ones still queued are failed. The store is closed before Run returns.
func (a *Actor) Run(ctx context.Context) error {
	defer close(a.done)
	a.tracker.Start()
	a.log.Info("catalog actor started", "catalog", a.name, "path", a.store.Path())

	// Requests run to completion even when ctx is cancelled mid-way.
	opCtx := context.WithoutCancel(ctx)

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			a.log.Info("catalog actor cancelled", "catalog", a.name)
			break loop
		case req := <-a.queue:
			a.metrics.queueDepth.Dec()
			// select picks at random when both are ready.
			if err := ctx.Err(); err != nil {
				a.failClosed(req)
				runErr = err
				a.log.Info("catalog actor cancelled", "catalog", a.name)
				break loop
			}
			if a.handle(opCtx, req) {
				break loop
			}
		}
	}

	a.shutdown()
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close catalog store", "catalog", a.name, "error", err)
		runErr = errors.Join(runErr, err)
	}
	a.tracker.Update(runErr)
	a.log.Info("catalog actor stopped", "catalog", a.name, "summary", a.tracker.Summary())
	return runErr
}

// shutdown stops intake and fails every request still queued.
func (a *Actor) shutdown() {
	a.stopOnce.Do(func() { close(a.stopping) })

	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	for {
		select {
		case req := <-a.queue:
			a.metrics.queueDepth.Dec()
			a.failClosed(req)
		default:
			return
		}
	}
}

// failClosed answers a request the actor will not process.
func (a *Actor) failClosed(req Request) {
	base := req.Base()
	base.Catalog = a.name
	base.fail("catalog closed")
	a.finish(req)
}

// handle processes one request and reports whether the actor should stop.
func (a *Actor) handle(ctx context.Context, req Request) (stop bool) {
	base := req.Base()
	base.Result = ResultFailure
	base.Modified = false
	base.Catalog = a.name

	a.log.Debug("processing request", "id", base.ID, "kind", req.Kind(), "command", base.Command)

	switch r := req.(type) {
	case *LifecycleRequest:
		stop = a.processLifecycle(ctx, r)
	case *DatasetRequest:
		a.processDataset(ctx, r)
	case *MemberRequest:
		a.processMember(ctx, r)
	default:
		base.fail("unsupported request type %T", req)
	}

	a.metrics.cacheEntries.Set(float64(a.cache.Len()))
	a.finish(req)
	return stop
}

// finish records the outcome and hands the request back to its initiator.
func (a *Actor) finish(req Request) {
	base := req.Base()
	if base.Result == ResultPending {
		base.fail("request was not answered")
	}
	base.Finished = time.Now()

	a.metrics.request(req)
	a.tracker.Record(base.Succeeded(), base.Modified)
	switch {
	case base.Result == ResultFailure:
		a.log.Debug("request failed", "id", base.ID, "kind", req.Kind(), "command", base.Command, "detail", base.Detail)
	case base.Modified:
		a.log.Info("catalog modified", "id", base.ID, "kind", req.Kind(), "command", base.Command, "detail", base.Detail)
	}

	defer func() {
		if r := recover(); r != nil {
			a.log.Error("initiator panicked", "id", base.ID, "panic", fmt.Sprint(r))
		}
	}()
	base.Initiator.ProcessResult(req)
}

// storeFailed logs a store error and fails the request with it.
func (a *Actor) storeFailed(base *RequestBase, err error, format string, args ...any) {
	what := fmt.Sprintf(format, args...)
	a.log.Warn("catalog store error", "id", base.ID, "operation", what, "error", err)
	base.fail("%s: %v", what, err)
}
