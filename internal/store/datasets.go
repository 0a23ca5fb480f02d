package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfcatalog/internal/catalog"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*catalog.Dataset, error) {
	var (
		name                                string
		volume, device, cat, dsorg, recfm   sql.NullString
		filename, encoding, structure       sql.NullString
		created, expires, referred          sql.NullTime
		downloaded, created2, referred2     sql.NullTime
		tracks, cylinders, percent, extents sql.NullInt64
		lrecl, blksize                      sql.NullInt64
	)
	err := row.Scan(&name, &volume, &device, &cat, &created, &expires, &referred,
		&tracks, &cylinders, &percent, &extents, &dsorg, &recfm, &lrecl, &blksize,
		&filename, &downloaded, &created2, &referred2, &encoding, &structure)
	if err != nil {
		return nil, err
	}

	ds := catalog.NewDataset(name)
	ds.SetLocation(volume.String, device.String, cat.String)
	ds.SetSpace(int(tracks.Int64), int(cylinders.Int64), int(extents.Int64), int(percent.Int64))
	ds.SetDisposition(dsorg.String, recfm.String, int(lrecl.Int64), int(blksize.Int64))
	ds.Created = timeValue(created)
	ds.Expires = timeValue(expires)
	ds.Referred = timeValue(referred)
	ds.Local = catalog.Local{
		Filename:   filename.String,
		Downloaded: timeValue(downloaded),
		Created:    timeValue(created2),
		Changed:    timeValue(referred2),
		Encoding:   encoding.String,
		Structure:  structure.String,
	}
	return ds, nil
}

// datasetValues returns the non-key columns in update order.
func datasetValues(ds *catalog.Dataset) []any {
	return []any{
		nullString(ds.Volume), nullString(ds.Device), nullString(ds.Catalog),
		nullTime(ds.Created), nullTime(ds.Expires), nullTime(ds.Referred),
		nullInt(ds.Tracks), nullInt(ds.Cylinders), nullInt(ds.Percent), nullInt(ds.Extents),
		nullString(ds.Dsorg), nullString(ds.Recfm), nullInt(ds.Lrecl), nullInt(ds.Blksize),
		nullString(ds.Local.Filename), nullTime(ds.Local.Downloaded),
		nullTime(ds.Local.Created), nullTime(ds.Local.Changed),
		nullString(ds.Local.Encoding), nullString(ds.Local.Structure),
	}
}

func findDataset(ctx context.Context, q querier, name string) (*catalog.Dataset, error) {
	ds, err := scanDataset(q.QueryRowContext(ctx, selectDatasets+" where NAME = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find dataset %s: %w", name, err)
	}
	return ds, nil
}

func insertDatasetRow(ctx context.Context, q querier, ds *catalog.Dataset) error {
	args := append([]any{ds.Name()}, datasetValues(ds)...)
	if _, err := q.ExecContext(ctx, insertDataset, args...); err != nil {
		return fmt.Errorf("failed to insert dataset %s: %w", ds.Name(), err)
	}
	return nil
}

// FindDataset returns the stored dataset or an error wrapping ErrNotFound.
func (s *Store) FindDataset(ctx context.Context, name string) (*catalog.Dataset, error) {
	return findDataset(ctx, s.db, name)
}

// ListDatasets returns the datasets selected by the pattern, ordered by name.
func (s *Store) ListDatasets(ctx context.Context, p Pattern) ([]*catalog.Dataset, error) {
	where, args := p.where("NAME")
	rows, err := s.db.QueryContext(ctx, selectDatasets+" where "+where+" order by NAME", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets %q: %w", p.Text, err)
	}
	defer rows.Close()

	var out []*catalog.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row: %w", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list datasets %q: %w", p.Text, err)
	}
	return out, nil
}

// InsertDataset adds a new dataset row.
func (s *Store) InsertDataset(ctx context.Context, ds *catalog.Dataset) error {
	return insertDatasetRow(ctx, s.db, ds)
}

// UpdateDataset rewrites every attribute of an existing dataset row.
func (s *Store) UpdateDataset(ctx context.Context, ds *catalog.Dataset) error {
	args := append(datasetValues(ds), ds.Name())
	res, err := s.db.ExecContext(ctx, updateDataset, args...)
	if err != nil {
		return fmt.Errorf("failed to update dataset %s: %w", ds.Name(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("dataset %s: %w", ds.Name(), ErrNotFound)
	}
	return nil
}

// DeleteDataset removes a dataset and all of its members in one transaction
// and returns the number of members removed. Nothing is removed on failure.
func (s *Store) DeleteDataset(ctx context.Context, name string) (int64, error) {
	var members int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "delete from MEMBERS where DATASET = ?", name)
		if err != nil {
			return fmt.Errorf("failed to delete members of %s: %w", name, err)
		}
		members, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, "delete from DATASETS where NAME = ?", name)
		if err != nil {
			return fmt.Errorf("failed to delete dataset %s: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("dataset %s: %w", name, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return members, nil
}
