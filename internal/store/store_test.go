package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mfcatalog/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "catalogs", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.CreateSchema(ctx))
	return s
}

func sampleDataset(name string) *catalog.Dataset {
	ds := catalog.NewDataset(name)
	ds.SetLocation("FUSR01", "3390", "CATALOG.USER.UCAT")
	ds.SetSpace(15, 1, 2, 40)
	ds.SetDisposition(catalog.DsorgSequential, "FB", 80, 27920)
	ds.Created = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	return ds
}

func TestDatasetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	ds := sampleDataset("USER.DATA")
	ds.Local.Downloaded = time.Date(2024, 2, 1, 12, 30, 0, 0, time.UTC)
	ds.Local.Encoding = "ebcdic"
	require.NoError(t, s.InsertDataset(ctx, ds))

	got, err := s.FindDataset(ctx, "USER.DATA")
	require.NoError(t, err)
	assert.Equal(t, ds, got)
}

func TestUnknownFieldsRoundTripAsUnknown(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertDataset(ctx, catalog.NewDataset("USER.EMPTY")))

	var lrecl, dsorg, created any
	row := s.db.QueryRowContext(ctx, "select LRECL, DSORG, CREATED from DATASETS where NAME = ?", "USER.EMPTY")
	require.NoError(t, row.Scan(&lrecl, &dsorg, &created))
	assert.Nil(t, lrecl, "unknown numbers are stored as NULL")
	assert.Nil(t, dsorg)
	assert.Nil(t, created)

	got, err := s.FindDataset(ctx, "USER.EMPTY")
	require.NoError(t, err)
	assert.Equal(t, catalog.NewDataset("USER.EMPTY"), got)
}

func TestFindDatasetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.FindDataset(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertDuplicateDatasetFails(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.InsertDataset(ctx, sampleDataset("USER.DATA")))
	assert.Error(t, s.InsertDataset(ctx, sampleDataset("USER.DATA")))
}

func TestUpdateDataset(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	ds := sampleDataset("USER.DATA")
	require.NoError(t, s.InsertDataset(ctx, ds))

	ds.Blksize = 3120
	ds.Volume = "FUSR02"
	require.NoError(t, s.UpdateDataset(ctx, ds))

	got, err := s.FindDataset(ctx, "USER.DATA")
	require.NoError(t, err)
	assert.Equal(t, 3120, got.Blksize)
	assert.Equal(t, "FUSR02", got.Volume)

	assert.ErrorIs(t, s.UpdateDataset(ctx, sampleDataset("OTHER")), ErrNotFound)
}

func TestListDatasetsPatterns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"SYS1.PARMLIB", "USER.DATA", "USER.PDS", "USER.ZZZ.LOAD", "USERX.DATA"} {
		require.NoError(t, s.InsertDataset(ctx, catalog.NewDataset(name)))
	}

	names := func(pattern string) []string {
		list, err := s.ListDatasets(ctx, ParsePattern(pattern))
		require.NoError(t, err)
		var out []string
		for _, ds := range list {
			out = append(out, ds.Name())
		}
		return out
	}

	assert.Equal(t, []string{"USER.DATA"}, names("USER.DATA"))
	assert.Empty(t, names("USER"))
	assert.Equal(t, []string{"USER.DATA", "USER.PDS", "USER.ZZZ.LOAD"}, names("USER.*"))
	assert.Equal(t, []string{"USER.DATA", "USER.PDS", "USER.ZZZ.LOAD", "USERX.DATA"}, names("USER*"))
	assert.Len(t, names("*"), 5)
	assert.Len(t, names("*.DATA"), 5, "a leading wildcard matches everything")
}

func TestInsertMemberCreatesPartitionedParent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	m := catalog.NewMember("USER.PDS", "MEMBER1")
	m.SetSize(10, 10, 0, 1, 0)
	parent, written, err := s.InsertMember(ctx, m)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, catalog.DsorgPartitioned, parent.Dsorg)

	ds, err := s.FindDataset(ctx, "USER.PDS")
	require.NoError(t, err)
	assert.True(t, ds.IsPartitioned())

	got, err := s.FindMember(ctx, "USER.PDS", "MEMBER1")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, written, err = s.InsertMember(ctx, catalog.NewMember("USER.PDS", "MEMBER2"))
	require.NoError(t, err)
	assert.False(t, written, "parent already partitioned")
}

func TestInsertMemberUpgradesUnknownDsorg(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	ds := catalog.NewDataset("USER.PDS")
	ds.Volume = "FUSR01"
	require.NoError(t, s.InsertDataset(ctx, ds))

	parent, written, err := s.InsertMember(ctx, catalog.NewMember("USER.PDS", "A"))
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "FUSR01", parent.Volume)
	assert.Equal(t, catalog.DsorgPartitioned, parent.Dsorg)
}

func TestMemberUpdateDeleteAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"ALPHA", "BETA", "BRAVO", "CHARLIE"} {
		_, _, err := s.InsertMember(ctx, catalog.NewMember("USER.PDS", name))
		require.NoError(t, err)
	}

	m := catalog.NewMember("USER.PDS", "BETA")
	m.ID = "IBMUSER"
	require.NoError(t, s.UpdateMember(ctx, m))
	got, err := s.FindMember(ctx, "USER.PDS", "BETA")
	require.NoError(t, err)
	assert.Equal(t, "IBMUSER", got.ID)

	list, err := s.ListMembers(ctx, "USER.PDS", ParsePattern("B*"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "BETA", list[0].Name())
	assert.Equal(t, "BRAVO", list[1].Name())

	require.NoError(t, s.DeleteMember(ctx, "USER.PDS", "BETA"))
	assert.ErrorIs(t, s.DeleteMember(ctx, "USER.PDS", "BETA"), ErrNotFound)
	assert.ErrorIs(t, s.UpdateMember(ctx, m), ErrNotFound)

	list, err = s.ListMembers(ctx, "USER.PDS", ParsePattern("*"))
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestDeleteDatasetCascades(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"A", "B", "C"} {
		_, _, err := s.InsertMember(ctx, catalog.NewMember("USER.PDS", name))
		require.NoError(t, err)
	}

	n, err := s.DeleteDataset(ctx, "USER.PDS")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = s.FindDataset(ctx, "USER.PDS")
	assert.ErrorIs(t, err, ErrNotFound)
	list, err := s.ListMembers(ctx, "USER.PDS", ParsePattern("*"))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.DeleteDataset(ctx, "USER.PDS")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDatasetRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"A", "B", "C"} {
		_, _, err := s.InsertMember(ctx, catalog.NewMember("USER.PDS", name))
		require.NoError(t, err)
	}

	// The members are deleted first, then the dataset delete aborts.
	_, err := s.db.ExecContext(ctx, `create trigger FAIL_DATASET_DELETE before delete on DATASETS
		begin select raise(abort, 'injected failure'); end`)
	require.NoError(t, err)

	_, err = s.DeleteDataset(ctx, "USER.PDS")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = s.FindDataset(ctx, "USER.PDS")
	require.NoError(t, err)
	list, err := s.ListMembers(ctx, "USER.PDS", ParsePattern("*"))
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestDropAndRecreateSchema(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, _, err := s.InsertMember(ctx, catalog.NewMember("USER.PDS", "A"))
	require.NoError(t, err)

	require.NoError(t, s.DropSchema(ctx))
	_, err = s.FindDataset(ctx, "USER.PDS")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound, "missing table is a failure, not absence")

	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))
	_, err = s.FindDataset(ctx, "USER.PDS")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberRequiresDataset(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	args := append([]any{"MISSING", "A"}, memberValues(catalog.NewMember("MISSING", "A"))...)
	_, err := s.db.ExecContext(ctx, insertMember, args...)
	assert.Error(t, err, "foreign keys are enforced")
}
