package actor

import (
	"context"
	"errors"

	"mfcatalog/internal/catalog"
	"mfcatalog/internal/store"
)

func (a *Actor) processLifecycle(ctx context.Context, r *LifecycleRequest) (stop bool) {
	switch r.Command {
	case CommandOpen:
		if err := a.store.CreateSchema(ctx); err != nil {
			a.storeFailed(&r.RequestBase, err, "open catalog")
			return false
		}
		r.succeed()
	case CommandCreate:
		a.cache.Clear()
		if err := a.store.DropSchema(ctx); err != nil {
			a.storeFailed(&r.RequestBase, err, "drop catalog")
			return false
		}
		r.Modified = true
		if err := a.store.CreateSchema(ctx); err != nil {
			a.storeFailed(&r.RequestBase, err, "create catalog")
			return false
		}
		r.succeed()
	case CommandDrop:
		a.cache.Clear()
		if err := a.store.DropSchema(ctx); err != nil {
			a.storeFailed(&r.RequestBase, err, "drop catalog")
			return false
		}
		r.Modified = true
		r.succeed()
	case CommandClose:
		r.succeed()
		return true
	default:
		r.fail("command %s is not a lifecycle command", r.Command)
	}
	return false
}

// resolveDataset looks the dataset up in the store and brings the cache in
// line with the answer. A nil dataset and nil error mean it does not exist.
func (a *Actor) resolveDataset(ctx context.Context, name string) (*catalog.Dataset, error) {
	ds, err := a.store.FindDataset(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		a.cache.Remove(name)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.cache.Replace(ds)
	return ds, nil
}

// resolveMember is resolveDataset for a member. The parent dataset is
// resolved first so that a cached member always sits under its stored
// dataset.
func (a *Actor) resolveMember(ctx context.Context, dataset, name string) (*catalog.Member, error) {
	parent, err := a.resolveDataset(ctx, dataset)
	if err != nil || parent == nil {
		return nil, err
	}
	m, err := a.store.FindMember(ctx, dataset, name)
	if errors.Is(err, store.ErrNotFound) {
		a.cache.RemoveMember(dataset, name)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.cache.PutMember(m)
	return m, nil
}

func (a *Actor) processDataset(ctx context.Context, r *DatasetRequest) {
	if r.DatasetName == "" && r.Dataset != nil {
		r.DatasetName = r.Dataset.Name()
	}
	if r.Command == CommandList {
		a.listDatasets(ctx, r)
		return
	}
	if r.DatasetName == "" {
		r.fail("no dataset name")
		return
	}

	switch r.Command {
	case CommandAdd, CommandModify, CommandUpdate:
		if r.Dataset == nil {
			r.fail("%s of %s carries no dataset", r.Command, r.DatasetName)
			return
		}
		if r.Dataset.Name() != r.DatasetName {
			r.fail("dataset %s does not match request name %s", r.Dataset.Name(), r.DatasetName)
			return
		}
	case CommandDelete, CommandFind:
	default:
		r.fail("command %s is not valid for a dataset", r.Command)
		return
	}

	current, err := a.resolveDataset(ctx, r.DatasetName)
	if err != nil {
		a.storeFailed(&r.RequestBase, err, "find dataset %s", r.DatasetName)
		return
	}

	switch r.Command {
	case CommandAdd:
		if current != nil {
			r.fail("dataset %s already exists", r.DatasetName)
			return
		}
		a.insertDataset(ctx, r)
	case CommandModify:
		if current == nil {
			r.fail("dataset %s not found", r.DatasetName)
			return
		}
		a.mergeDataset(ctx, r, current)
	case CommandUpdate:
		if current == nil {
			a.insertDataset(ctx, r)
			return
		}
		a.mergeDataset(ctx, r, current)
	case CommandDelete:
		if current == nil {
			r.fail("dataset %s not found", r.DatasetName)
			return
		}
		a.deleteDataset(ctx, r)
	case CommandFind:
		if current == nil {
			r.fail("dataset %s not found", r.DatasetName)
			return
		}
		r.Dataset = current.Clone()
		r.succeed()
	}
}

func (a *Actor) insertDataset(ctx context.Context, r *DatasetRequest) {
	ds := r.Dataset.Clone()
	if err := a.store.InsertDataset(ctx, ds); err != nil {
		a.storeFailed(&r.RequestBase, err, "insert dataset %s", ds.Name())
		return
	}
	a.metrics.write(store.DatasetsTable, opInsert)
	a.cache.Replace(ds)

	r.Dataset = ds.Clone()
	r.Modified = true
	r.note("dataset %s added", ds.Name())
	r.succeed()
}

// mergeDataset merges the incoming attributes into current and writes the
// result only when something changed.
func (a *Actor) mergeDataset(ctx context.Context, r *DatasetRequest, current *catalog.Dataset) {
	if !current.DiffersFrom(r.Dataset) {
		r.Dataset = current.Clone()
		r.succeed()
		return
	}

	merged := current.Clone()
	merged.Merge(r.Dataset)
	if err := a.store.UpdateDataset(ctx, merged); err != nil {
		a.storeFailed(&r.RequestBase, err, "update dataset %s", merged.Name())
		return
	}
	a.metrics.write(store.DatasetsTable, opUpdate)
	a.cache.Replace(merged)

	r.Dataset = merged.Clone()
	r.Modified = true
	r.note("dataset %s updated", merged.Name())
	r.succeed()
}

func (a *Actor) deleteDataset(ctx context.Context, r *DatasetRequest) {
	members, err := a.store.DeleteDataset(ctx, r.DatasetName)
	if err != nil {
		a.storeFailed(&r.RequestBase, err, "delete dataset %s", r.DatasetName)
		return
	}
	if members > 0 {
		a.metrics.writes.WithLabelValues(store.MembersTable, opDelete).Add(float64(members))
	}
	a.metrics.write(store.DatasetsTable, opDelete)
	a.cache.Remove(r.DatasetName)

	r.Modified = true
	r.note("dataset %s deleted with %d members", r.DatasetName, members)
	r.succeed()
}

func (a *Actor) listDatasets(ctx context.Context, r *DatasetRequest) {
	text := r.DatasetName
	if text == "" {
		text = store.Wildcard
	}
	pattern := store.ParsePattern(text)
	datasets, err := a.store.ListDatasets(ctx, pattern)
	if err != nil {
		a.storeFailed(&r.RequestBase, err, "list datasets %s", text)
		return
	}

	listed := make(map[string]bool, len(datasets))
	r.Datasets = make([]*catalog.Dataset, 0, len(datasets))
	for _, ds := range datasets {
		a.cache.Replace(ds)
		listed[ds.Name()] = true
		r.Datasets = append(r.Datasets, ds.Clone())
	}
	// Cached datasets in the listed range that the store no longer has.
	for _, name := range a.cache.Names() {
		if pattern.Match(name) && !listed[name] {
			a.cache.Remove(name)
		}
	}
	r.succeed()
}

func (a *Actor) processMember(ctx context.Context, r *MemberRequest) {
	if r.Member != nil {
		if r.DatasetName == "" {
			r.DatasetName = r.Member.DatasetName()
		}
		if r.MemberName == "" {
			r.MemberName = r.Member.Name()
		}
	}
	if r.DatasetName == "" {
		r.fail("no dataset name")
		return
	}
	if r.Command == CommandList {
		a.listMembers(ctx, r)
		return
	}
	if r.MemberName == "" {
		r.fail("no member name")
		return
	}

	switch r.Command {
	case CommandAdd, CommandModify, CommandUpdate:
		if r.Member == nil {
			r.fail("%s of %s(%s) carries no member", r.Command, r.DatasetName, r.MemberName)
			return
		}
		if r.Member.DatasetName() != r.DatasetName || r.Member.Name() != r.MemberName {
			r.fail("member %s(%s) does not match request %s(%s)",
				r.Member.DatasetName(), r.Member.Name(), r.DatasetName, r.MemberName)
			return
		}
	case CommandDelete, CommandFind:
	default:
		r.fail("command %s is not valid for a member", r.Command)
		return
	}

	current, err := a.resolveMember(ctx, r.DatasetName, r.MemberName)
	if err != nil {
		a.storeFailed(&r.RequestBase, err, "find member %s(%s)", r.DatasetName, r.MemberName)
		return
	}

	switch r.Command {
	case CommandAdd:
		if current != nil {
			r.fail("member %s(%s) already exists", r.DatasetName, r.MemberName)
			return
		}
		a.insertMember(ctx, r)
	case CommandModify:
		if current == nil {
			r.fail("member %s(%s) not found", r.DatasetName, r.MemberName)
			return
		}
		a.mergeMember(ctx, r, current)
	case CommandUpdate:
		if current == nil {
			a.insertMember(ctx, r)
			return
		}
		a.mergeMember(ctx, r, current)
	case CommandDelete:
		if current == nil {
			r.fail("member %s(%s) not found", r.DatasetName, r.MemberName)
			return
		}
		a.deleteMember(ctx, r)
	case CommandFind:
		if current == nil {
			r.fail("member %s(%s) not found", r.DatasetName, r.MemberName)
			return
		}
		r.Member = current.Clone()
		r.Dataset = a.cachedDataset(r.DatasetName)
		r.succeed()
	}
}

// cachedDataset returns a copy of the cached dataset, or nil.
func (a *Actor) cachedDataset(name string) *catalog.Dataset {
	e, ok := a.cache.Entry(name)
	if !ok {
		return nil
	}
	return e.Dataset().Clone()
}

// insertMember stores a new member. A missing parent dataset is created as a
// partitioned dataset in the same transaction.
func (a *Actor) insertMember(ctx context.Context, r *MemberRequest) {
	_, parentKnown := a.cache.Entry(r.DatasetName)

	m := r.Member.Clone()
	parent, parentWritten, err := a.store.InsertMember(ctx, m)
	if err != nil {
		a.storeFailed(&r.RequestBase, err, "insert member %s(%s)", r.DatasetName, r.MemberName)
		return
	}
	if parentWritten {
		if parentKnown {
			a.metrics.write(store.DatasetsTable, opUpdate)
			r.note("dataset %s marked partitioned", parent.Name())
		} else {
			a.metrics.write(store.DatasetsTable, opInsert)
			r.note("dataset %s created", parent.Name())
		}
	}
	a.metrics.write(store.MembersTable, opInsert)

	a.cache.Replace(parent)
	a.cache.PutMember(m)

	r.Member = m.Clone()
	r.Dataset = parent.Clone()
	r.Modified = true
	r.note("member %s(%s) added", r.DatasetName, r.MemberName)
	r.succeed()
}

func (a *Actor) mergeMember(ctx context.Context, r *MemberRequest, current *catalog.Member) {
	if !current.DiffersFrom(r.Member) {
		r.Member = current.Clone()
		r.Dataset = a.cachedDataset(r.DatasetName)
		r.succeed()
		return
	}

	merged := current.Clone()
	merged.Merge(r.Member)
	if err := a.store.UpdateMember(ctx, merged); err != nil {
		a.storeFailed(&r.RequestBase, err, "update member %s(%s)", r.DatasetName, r.MemberName)
		return
	}
	a.metrics.write(store.MembersTable, opUpdate)

	// current is the cached instance; merging the same attributes into it
	// leaves the cache equal to what was just written.
	resident := a.cache.AddMember(r.Member.Clone())
	if resident == nil {
		a.cache.PutMember(merged.Clone())
	}

	r.Member = merged
	r.Dataset = a.cachedDataset(r.DatasetName)
	r.Modified = true
	r.note("member %s(%s) updated", r.DatasetName, r.MemberName)
	r.succeed()
}

func (a *Actor) deleteMember(ctx context.Context, r *MemberRequest) {
	if err := a.store.DeleteMember(ctx, r.DatasetName, r.MemberName); err != nil {
		a.storeFailed(&r.RequestBase, err, "delete member %s(%s)", r.DatasetName, r.MemberName)
		return
	}
	a.metrics.write(store.MembersTable, opDelete)
	a.cache.RemoveMember(r.DatasetName, r.MemberName)

	r.Modified = true
	r.note("member %s(%s) deleted", r.DatasetName, r.MemberName)
	r.succeed()
}

// listMembers lists the members of one dataset. A dataset that does not exist
// has no members, which is not a failure.
func (a *Actor) listMembers(ctx context.Context, r *MemberRequest) {
	parent, err := a.resolveDataset(ctx, r.DatasetName)
	if err != nil {
		a.storeFailed(&r.RequestBase, err, "find dataset %s", r.DatasetName)
		return
	}
	r.Members = []*catalog.Member{}
	if parent == nil {
		r.succeed()
		return
	}

	text := r.MemberName
	if text == "" {
		text = store.Wildcard
	}
	pattern := store.ParsePattern(text)
	members, err := a.store.ListMembers(ctx, r.DatasetName, pattern)
	if err != nil {
		a.storeFailed(&r.RequestBase, err, "list members of %s", r.DatasetName)
		return
	}
	listed := make(map[string]bool, len(members))
	for _, m := range members {
		a.cache.PutMember(m)
		listed[m.Name()] = true
		r.Members = append(r.Members, m.Clone())
	}
	if e, ok := a.cache.Entry(r.DatasetName); ok {
		for _, m := range e.Members() {
			if pattern.Match(m.Name()) && !listed[m.Name()] {
				e.RemoveMember(m.Name())
			}
		}
	}
	r.Dataset = parent.Clone()
	r.succeed()
}
