package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"mfcatalog/internal/actor"
	"mfcatalog/internal/catalog"
	"mfcatalog/internal/core/logger"
	"mfcatalog/internal/core/types"
	"mfcatalog/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrFailed wraps the detail of a request the catalog answered with failure.
var ErrFailed = errors.New("catalog request failed")

type Option func(*App)

// WithOutput sets where listings are printed.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithRegisterer registers the catalog metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *App) {
		a.registerer = reg
	}
}

// App runs a catalog actor for the duration of one command and prints what
// it answers.
type App struct {
	actor      *actor.Actor
	out        io.Writer
	log        *logger.Logger
	registerer prometheus.Registerer
	runErr     chan error

	closeOnce sync.Once
	closeErr  error
}

// Open opens the configured catalog, starts its actor and makes sure the
// tables exist.
func Open(ctx context.Context, cfg *types.Config, opts ...Option) (*App, error) {
	app := &App{
		out:    os.Stdout,
		runErr: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.log == nil {
		app.log = logger.NewLogger(logger.WithName("mfcat"))
	}

	path := cfg.Store.Path()
	s, err := store.Open(ctx, path,
		store.WithBusyTimeout(cfg.Store.Timeout()),
		store.WithLogger(app.log.WithGroup("store")),
	)
	if err != nil {
		return nil, err
	}

	app.actor = actor.New(s,
		actor.WithName(filepath.Base(path)),
		actor.WithQueueSize(cfg.Actor.QueueSize),
		actor.WithLogger(app.log.WithGroup("actor")),
		actor.WithRegisterer(app.registerer),
	)
	go func() { app.runErr <- app.actor.Run(ctx) }()

	if err := app.do(ctx, actor.NewLifecycleRequest(actor.CommandOpen, nil)); err != nil {
		app.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return app, nil
}

// Close stops the actor and waits for the catalog to be released.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		if err := a.actor.Close(ctx); err != nil {
			a.closeErr = err
			return
		}
		if err := <-a.runErr; err != nil && !errors.Is(err, context.Canceled) {
			a.closeErr = err
		}
	})
	return a.closeErr
}

// Actor returns the catalog actor.
func (a *App) Actor() *actor.Actor {
	return a.actor
}

// do runs req and turns a failure result into an error.
func (a *App) do(ctx context.Context, req actor.Request) error {
	if err := a.actor.Do(ctx, req); err != nil {
		return err
	}
	base := req.Base()
	if !base.Succeeded() {
		return fmt.Errorf("%w: %s %s: %s", ErrFailed, req.Kind(), base.Command, base.Detail)
	}
	a.log.Debug("request finished", "request", req.String())
	return nil
}

// Init recreates the catalog tables, discarding every entry.
func (a *App) Init(ctx context.Context) error {
	if err := a.do(ctx, actor.NewLifecycleRequest(actor.CommandCreate, nil)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Catalog %s initialized\n", a.actor.Name())
	return nil
}

// Drop removes the catalog tables.
func (a *App) Drop(ctx context.Context) error {
	if err := a.do(ctx, actor.NewLifecycleRequest(actor.CommandDrop, nil)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Catalog %s dropped\n", a.actor.Name())
	return nil
}

// List prints the datasets matching pattern.
func (a *App) List(ctx context.Context, pattern string) error {
	req := actor.NewDatasetNameRequest(actor.CommandList, pattern, nil)
	if err := a.do(ctx, req); err != nil {
		return err
	}
	if len(req.Datasets) > 0 {
		fmt.Fprintln(a.out, catalog.DatasetHeader())
	}
	for _, ds := range req.Datasets {
		fmt.Fprintln(a.out, ds)
	}
	fmt.Fprintf(a.out, "%s datasets\n", humanize.Comma(int64(len(req.Datasets))))
	return nil
}

// Find prints one dataset.
func (a *App) Find(ctx context.Context, name string) error {
	req := actor.NewDatasetNameRequest(actor.CommandFind, name, nil)
	if err := a.do(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, catalog.DatasetHeader())
	fmt.Fprintln(a.out, req.Dataset)
	return nil
}

// Members prints the members of dataset matching pattern.
func (a *App) Members(ctx context.Context, dataset, pattern string) error {
	req := actor.NewMemberNameRequest(actor.CommandList, dataset, pattern, nil)
	if err := a.do(ctx, req); err != nil {
		return err
	}
	if len(req.Members) > 0 {
		fmt.Fprintln(a.out, catalog.MemberHeader())
	}
	for _, m := range req.Members {
		fmt.Fprintln(a.out, m)
	}
	fmt.Fprintf(a.out, "%s members in %s\n", humanize.Comma(int64(len(req.Members))), dataset)
	return nil
}

// Delete removes a member, or a dataset with all of its members when member
// is empty.
func (a *App) Delete(ctx context.Context, dataset, member string) error {
	var req actor.Request
	if member == "" {
		req = actor.NewDatasetNameRequest(actor.CommandDelete, dataset, nil)
	} else {
		req = actor.NewMemberNameRequest(actor.CommandDelete, dataset, member, nil)
	}
	if err := a.do(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, req.Base().Detail)
	return nil
}
