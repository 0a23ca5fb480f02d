package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"mfcatalog/internal/core/logger"
	"mfcatalog/internal/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testListing = `datasets:
  - name: USER.DATA
    volume: VOL001
    device: "3390"
    catalog: CATALOG.UCAT
    tracks: 15
    extents: 1
    percent: 40
    dsorg: PS
    recfm: FB
    lrecl: 80
    blksize: 27920
    created: "2024/01/31"
    referred: "2024/02/01"
  - name: USER.PDS
    volume: VOL002
    dsorg: PO
    recfm: FB
    lrecl: 80
    members:
      - name: MEMBER1
        id: FUSR01
        size: 120
        init: 100
        mod: 3
        vv: 1
        mm: 2
        created: "2024/01/31"
        changed: "2024/02/01 10:11:12"
      - name: MEMBER2
        size: 8
`

type testApp struct {
	*App
	out *bytes.Buffer
	cfg *types.Config
}

func openApp(t *testing.T) *testApp {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Store.BaseDir = t.TempDir()

	out := &bytes.Buffer{}
	app, err := Open(context.Background(), &cfg, WithOutput(out), WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close(context.Background())) })
	return &testApp{App: app, out: out, cfg: &cfg}
}

func writeListing(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportAndQuery(t *testing.T) {
	ctx := context.Background()
	app := openApp(t)
	path := writeListing(t, testListing)

	tr, err := app.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), tr.Total())
	assert.Equal(t, int64(4), tr.Succeeded())
	assert.Equal(t, int64(4), tr.Modified())
	assert.True(t, tr.Status().IsSuccess())
	assert.Contains(t, app.out.String(), "4 requests (4 ok, 0 failed, 4 modified)")

	app.out.Reset()
	require.NoError(t, app.List(ctx, "USER.*"))
	listing := app.out.String()
	assert.Contains(t, listing, "USER.DATA")
	assert.Contains(t, listing, "USER.PDS")
	assert.Contains(t, listing, "2 datasets")

	app.out.Reset()
	require.NoError(t, app.Find(ctx, "USER.DATA"))
	assert.Contains(t, app.out.String(), "VOL001")
	assert.Contains(t, app.out.String(), "2024/01/31")

	app.out.Reset()
	require.NoError(t, app.Members(ctx, "USER.PDS", ""))
	assert.Contains(t, app.out.String(), "MEMBER1")
	assert.Contains(t, app.out.String(), "MEMBER2")
	assert.Contains(t, app.out.String(), "2 members in USER.PDS")

	app.out.Reset()
	require.NoError(t, app.Members(ctx, "USER.PDS", "MEMBER1"))
	assert.Contains(t, app.out.String(), "1 members in USER.PDS")
}

func TestImportTwiceWritesNothing(t *testing.T) {
	ctx := context.Background()
	app := openApp(t)
	path := writeListing(t, testListing)

	_, err := app.Import(ctx, path)
	require.NoError(t, err)

	tr, err := app.Import(ctx, path, WithProgress(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, int64(4), tr.Succeeded())
	assert.Zero(t, tr.Modified())
}

func TestImportRejectsBadListing(t *testing.T) {
	ctx := context.Background()
	app := openApp(t)

	_, err := app.Import(ctx, writeListing(t, "datasets:\n  - name: A\n    colour: red\n"))
	assert.Error(t, err)

	_, err = app.Import(ctx, writeListing(t, "datasets:\n  - name: A\n    created: \"31/01/2024\"\n"))
	assert.Error(t, err)

	_, err = app.Import(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	app.out.Reset()
	require.NoError(t, app.List(ctx, ""))
	assert.Contains(t, app.out.String(), "0 datasets")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	app := openApp(t)
	_, err := app.Import(ctx, writeListing(t, testListing))
	require.NoError(t, err)

	app.out.Reset()
	require.NoError(t, app.Delete(ctx, "USER.PDS", "MEMBER2"))
	assert.Contains(t, app.out.String(), "member USER.PDS(MEMBER2) deleted")

	err = app.Delete(ctx, "USER.PDS", "MEMBER2")
	assert.ErrorIs(t, err, ErrFailed)

	app.out.Reset()
	require.NoError(t, app.Delete(ctx, "USER.PDS", ""))
	assert.Contains(t, app.out.String(), "dataset USER.PDS deleted with 1 members")

	err = app.Find(ctx, "USER.PDS")
	assert.ErrorIs(t, err, ErrFailed)
}

func TestInitAndDrop(t *testing.T) {
	ctx := context.Background()
	app := openApp(t)
	_, err := app.Import(ctx, writeListing(t, testListing))
	require.NoError(t, err)

	app.out.Reset()
	require.NoError(t, app.Init(ctx))
	assert.Contains(t, app.out.String(), "initialized")

	app.out.Reset()
	require.NoError(t, app.List(ctx, "*"))
	assert.Contains(t, app.out.String(), "0 datasets")

	require.NoError(t, app.Drop(ctx))
	assert.ErrorIs(t, app.List(ctx, "*"), ErrFailed)

	require.NoError(t, app.Init(ctx))
	require.NoError(t, app.List(ctx, "*"))
}

func TestCatalogSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := types.DefaultConfig()
	cfg.Store.BaseDir = t.TempDir()
	path := writeListing(t, testListing)

	app, err := Open(ctx, &cfg, WithOutput(&bytes.Buffer{}), WithLogger(logger.Discard()))
	require.NoError(t, err)
	_, err = app.Import(ctx, path)
	require.NoError(t, err)
	require.NoError(t, app.Close(ctx))
	require.NoError(t, app.Close(ctx))

	out := &bytes.Buffer{}
	app, err = Open(ctx, &cfg, WithOutput(out), WithLogger(logger.Discard()))
	require.NoError(t, err)
	defer app.Close(ctx)

	require.NoError(t, app.Members(ctx, "USER.PDS", "MEMBER*"))
	assert.Contains(t, out.String(), "2 members in USER.PDS")
	assert.Equal(t, filepath.Join(cfg.Store.BaseDir, types.DefaultCatalog), cfg.Store.Path())
}
