package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"mfcatalog/internal/actor"
	"mfcatalog/internal/catalog"
	"mfcatalog/internal/core/progress"
	"mfcatalog/internal/core/tracker"
)

const importBar = "import"

// ImportOption configures an import.
type ImportOption func(*importer)

// WithProgress draws a progress bar on w while the listing is imported.
func WithProgress(w io.Writer) ImportOption {
	return func(i *importer) {
		i.progressOut = w
	}
}

type importer struct {
	progressOut io.Writer
	progress    *progress.Progress
	tracker     *tracker.Tracker

	wg       sync.WaitGroup
	mu       sync.Mutex
	failures []string
}

// ProcessResult records one finished update request.
func (i *importer) ProcessResult(req actor.Request) {
	defer i.wg.Done()
	base := req.Base()
	i.tracker.Record(base.Succeeded(), base.Modified)
	if !base.Succeeded() {
		i.mu.Lock()
		i.failures = append(i.failures, fmt.Sprintf("%s: %s", req.Kind(), base.Detail))
		i.mu.Unlock()
	}
	if i.progress != nil {
		i.progress.Increment(importBar)
	}
}

// Import updates the catalog from a YAML listing. Datasets are queued before
// their members so that listed attributes win over auto-created parents.
func (a *App) Import(ctx context.Context, path string, opts ...ImportOption) (*tracker.Tracker, error) {
	listing, err := LoadListing(path)
	if err != nil {
		return nil, err
	}
	datasets, members, err := listing.Entities()
	if err != nil {
		return nil, fmt.Errorf("invalid listing %s: %w", path, err)
	}

	imp := &importer{tracker: tracker.NewTracker(filepath.Base(path))}
	for _, opt := range opts {
		opt(imp)
	}
	imp.tracker.SetTotal(int64(len(datasets) + len(members)))
	if imp.progressOut != nil {
		imp.progress = progress.NewProgress(progress.WithOutput(imp.progressOut))
		imp.progress.AddBar(importBar, "Importing", imp.tracker.Total())
	}

	imp.tracker.Start()
	submitErr := a.submitAll(ctx, imp, datasets, members)
	imp.wg.Wait()
	if imp.progress != nil {
		imp.progress.Wait()
	}

	if submitErr != nil {
		imp.tracker.Update(submitErr)
		return imp.tracker, submitErr
	}
	for _, f := range imp.failures {
		a.log.Warn("import request failed", "detail", f)
	}
	if n := imp.tracker.Failed(); n > 0 {
		err = fmt.Errorf("%w: %d of %d entries not imported", ErrFailed, n, imp.tracker.Total())
	}
	imp.tracker.Update(err)
	fmt.Fprintln(a.out, imp.tracker.Summary())
	return imp.tracker, err
}

func (a *App) submitAll(ctx context.Context, imp *importer, datasets []*catalog.Dataset, members []*catalog.Member) error {
	submit := func(req actor.Request) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		imp.wg.Add(1)
		if err := a.actor.SubmitContext(ctx, req); err != nil {
			imp.wg.Done()
			return err
		}
		return nil
	}
	for _, ds := range datasets {
		if err := submit(actor.NewDatasetRequest(actor.CommandUpdate, ds, imp)); err != nil {
			return err
		}
	}
	for _, m := range members {
		if err := submit(actor.NewMemberRequest(actor.CommandUpdate, m, imp)); err != nil {
			return err
		}
	}
	return nil
}
