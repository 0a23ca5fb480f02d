package cli

import (
	"errors"
	"fmt"
	"os"

	"mfcatalog/internal/catalog"

	"github.com/goccy/go-yaml"
)

// Listing is a saved catalog listing, as produced by a terminal session
// capture, that can be imported into a catalog.
type Listing struct {
	Datasets []DatasetEntry `yaml:"datasets"`
}

// DatasetEntry is one listed dataset. Omitted fields are unknown.
type DatasetEntry struct {
	Name      string `yaml:"name"`
	Volume    string `yaml:"volume,omitempty"`
	Device    string `yaml:"device,omitempty"`
	Catalog   string `yaml:"catalog,omitempty"`
	Tracks    int    `yaml:"tracks,omitempty"`
	Cylinders int    `yaml:"cylinders,omitempty"`
	Extents   int    `yaml:"extents,omitempty"`
	Percent   int    `yaml:"percent,omitempty"`
	Dsorg     string `yaml:"dsorg,omitempty"`
	Recfm     string `yaml:"recfm,omitempty"`
	Lrecl     int    `yaml:"lrecl,omitempty"`
	Blksize   int    `yaml:"blksize,omitempty"`
	Created   string `yaml:"created,omitempty"`  // yyyy/MM/dd
	Expires   string `yaml:"expires,omitempty"`  // yyyy/MM/dd
	Referred  string `yaml:"referred,omitempty"` // yyyy/MM/dd

	Members []MemberEntry `yaml:"members,omitempty"`
}

// MemberEntry is one listed member of a partitioned dataset.
type MemberEntry struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id,omitempty"`
	Size    int    `yaml:"size,omitempty"`
	Init    int    `yaml:"init,omitempty"`
	Mod     int    `yaml:"mod,omitempty"`
	VV      int    `yaml:"vv,omitempty"`
	MM      int    `yaml:"mm,omitempty"`
	Created string `yaml:"created,omitempty"` // yyyy/MM/dd
	Changed string `yaml:"changed,omitempty"` // yyyy/MM/dd HH:mm:ss
}

// LoadListing reads a YAML listing. Unknown keys are rejected so that typos
// do not silently drop attributes.
func LoadListing(path string) (*Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing %s: %w", path, err)
	}
	var l Listing
	if err := yaml.UnmarshalWithOptions(data, &l, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", path, err)
	}
	return &l, nil
}

// Count returns the number of datasets and members listed.
func (l *Listing) Count() int {
	n := len(l.Datasets)
	for _, ds := range l.Datasets {
		n += len(ds.Members)
	}
	return n
}

// Entities converts the listing into catalog entities, datasets first. Every
// problem found is reported.
func (l *Listing) Entities() ([]*catalog.Dataset, []*catalog.Member, error) {
	var (
		datasets []*catalog.Dataset
		members  []*catalog.Member
		errs     []error
	)
	for i, entry := range l.Datasets {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("dataset %d has no name", i+1))
			continue
		}
		ds := catalog.NewDataset(entry.Name)
		ds.SetLocation(entry.Volume, entry.Device, entry.Catalog)
		ds.SetSpace(entry.Tracks, entry.Cylinders, entry.Extents, entry.Percent)
		ds.SetDisposition(entry.Dsorg, entry.Recfm, entry.Lrecl, entry.Blksize)
		if err := ds.SetDates(entry.Created, entry.Expires, entry.Referred); err != nil {
			errs = append(errs, fmt.Errorf("dataset %s: %w", entry.Name, err))
		}
		datasets = append(datasets, ds)

		for j, me := range entry.Members {
			if me.Name == "" {
				errs = append(errs, fmt.Errorf("dataset %s member %d has no name", entry.Name, j+1))
				continue
			}
			m := catalog.NewMember(entry.Name, me.Name)
			m.ID = me.ID
			m.SetSize(me.Size, me.Init, me.Mod, me.VV, me.MM)
			if err := m.SetDates(me.Created, me.Changed); err != nil {
				errs = append(errs, fmt.Errorf("member %s(%s): %w", entry.Name, me.Name, err))
			}
			members = append(members, m)
		}
	}
	return datasets, members, errors.Join(errs...)
}
