package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mfcatalog/internal/catalog"
)

func scanMember(row rowScanner) (*catalog.Member, error) {
	var (
		dataset, name                     string
		id, filename, encoding, structure sql.NullString
		size, initial, mod, vv, mm        sql.NullInt64
		created, changed                  sql.NullTime
		downloaded, created2, changed2    sql.NullTime
	)
	err := row.Scan(&dataset, &name, &size, &initial, &mod, &vv, &mm, &id, &created, &changed,
		&filename, &downloaded, &created2, &changed2, &encoding, &structure)
	if err != nil {
		return nil, err
	}

	m := catalog.NewMember(dataset, name)
	m.ID = id.String
	m.SetSize(int(size.Int64), int(initial.Int64), int(mod.Int64), int(vv.Int64), int(mm.Int64))
	m.Created = timeValue(created)
	m.Changed = timeValue(changed)
	m.Local = catalog.Local{
		Filename:   filename.String,
		Downloaded: timeValue(downloaded),
		Created:    timeValue(created2),
		Changed:    timeValue(changed2),
		Encoding:   encoding.String,
		Structure:  structure.String,
	}
	return m, nil
}

func memberValues(m *catalog.Member) []any {
	return []any{
		nullInt(m.Size), nullInt(m.Init), nullInt(m.Mod), nullInt(m.VV), nullInt(m.MM),
		nullString(m.ID), nullTime(m.Created), nullTime(m.Changed),
		nullString(m.Local.Filename), nullTime(m.Local.Downloaded),
		nullTime(m.Local.Created), nullTime(m.Local.Changed),
		nullString(m.Local.Encoding), nullString(m.Local.Structure),
	}
}

// FindMember returns the stored member or an error wrapping ErrNotFound.
func (s *Store) FindMember(ctx context.Context, dataset, name string) (*catalog.Member, error) {
	row := s.db.QueryRowContext(ctx, selectMembers+" where DATASET = ? and NAME = ?", dataset, name)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s(%s): %w", dataset, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find member %s(%s): %w", dataset, name, err)
	}
	return m, nil
}

// ListMembers returns the members of dataset selected by the pattern, ordered
// by name.
func (s *Store) ListMembers(ctx context.Context, dataset string, p Pattern) ([]*catalog.Member, error) {
	where, args := p.where("NAME")
	args = append([]any{dataset}, args...)
	rows, err := s.db.QueryContext(ctx,
		selectMembers+" where DATASET = ? and "+where+" order by NAME", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s %q: %w", dataset, p.Text, err)
	}
	defer rows.Close()

	var out []*catalog.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read member row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list members of %s %q: %w", dataset, p.Text, err)
	}
	return out, nil
}

// InsertMember adds a member row. The parent dataset is created as a PDS when
// it is missing, and marked as one when its organization is unknown; both
// writes share one transaction. The parent as stored afterwards is returned
// with a flag reporting whether it was written.
func (s *Store) InsertMember(ctx context.Context, m *catalog.Member) (*catalog.Dataset, bool, error) {
	var (
		parent  *catalog.Dataset
		written bool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ds, err := findDataset(ctx, tx, m.DatasetName())
		switch {
		case errors.Is(err, ErrNotFound):
			ds = catalog.NewDataset(m.DatasetName())
			ds.Dsorg = catalog.DsorgPartitioned
			if err := insertDatasetRow(ctx, tx, ds); err != nil {
				return err
			}
			written = true
		case err != nil:
			return err
		case ds.Dsorg == "":
			ds.Dsorg = catalog.DsorgPartitioned
			if _, err := tx.ExecContext(ctx, "update DATASETS set DSORG = ? where NAME = ?",
				ds.Dsorg, ds.Name()); err != nil {
				return fmt.Errorf("failed to mark %s partitioned: %w", ds.Name(), err)
			}
			written = true
		}

		args := append([]any{m.DatasetName(), m.Name()}, memberValues(m)...)
		if _, err := tx.ExecContext(ctx, insertMember, args...); err != nil {
			return fmt.Errorf("failed to insert member %s(%s): %w", m.DatasetName(), m.Name(), err)
		}
		parent = ds
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return parent, written, nil
}

// UpdateMember rewrites every attribute of an existing member row.
func (s *Store) UpdateMember(ctx context.Context, m *catalog.Member) error {
	args := append(memberValues(m), m.DatasetName(), m.Name())
	res, err := s.db.ExecContext(ctx, updateMember, args...)
	if err != nil {
		return fmt.Errorf("failed to update member %s(%s): %w", m.DatasetName(), m.Name(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("member %s(%s): %w", m.DatasetName(), m.Name(), ErrNotFound)
	}
	return nil
}

// DeleteMember removes one member row.
func (s *Store) DeleteMember(ctx context.Context, dataset, name string) error {
	res, err := s.db.ExecContext(ctx, "delete from MEMBERS where DATASET = ? and NAME = ?", dataset, name)
	if err != nil {
		return fmt.Errorf("failed to delete member %s(%s): %w", dataset, name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("member %s(%s): %w", dataset, name, ErrNotFound)
	}
	return nil
}
