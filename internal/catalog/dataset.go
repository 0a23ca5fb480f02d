package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DsorgPartitioned marks a partitioned dataset (a PDS holding members).
	DsorgPartitioned = "PO"
	// DsorgSequential marks a physical sequential dataset.
	DsorgSequential = "PS"
)

// DateLayout is the mainframe listing format for dates.
const DateLayout = "2006/01/02"

// Local holds the PC-side tracking fields owned by the download collaborator.
type Local struct {
	Filename   string    // local file the dataset or member was saved to
	Downloaded time.Time // when it was downloaded
	Created    time.Time // mainframe created date at download time
	Changed    time.Time // mainframe referred/changed date at download time
	Encoding   string    // ascii, ebcdic
	Structure  string    // cr, reclen, ravel, rdw
}

func (l *Local) merge(other Local) bool {
	changed := mergeString(&l.Filename, other.Filename)
	changed = mergeTime(&l.Downloaded, other.Downloaded) || changed
	changed = mergeTime(&l.Created, other.Created) || changed
	changed = mergeTime(&l.Changed, other.Changed) || changed
	changed = mergeString(&l.Encoding, other.Encoding) || changed
	changed = mergeString(&l.Structure, other.Structure) || changed
	return changed
}

func (l Local) differsFrom(other Local) bool {
	return stringDiffers(l.Filename, other.Filename) ||
		timeDiffers(l.Downloaded, other.Downloaded) ||
		timeDiffers(l.Created, other.Created) ||
		timeDiffers(l.Changed, other.Changed) ||
		stringDiffers(l.Encoding, other.Encoding) ||
		stringDiffers(l.Structure, other.Structure)
}

// Dataset is a mainframe storage object. A zero number, empty string or zero
// time means the attribute is unknown.
type Dataset struct {
	name string

	Volume  string
	Device  string
	Catalog string

	Tracks    int
	Cylinders int
	Extents   int
	Percent   int

	Dsorg   string
	Recfm   string
	Lrecl   int
	Blksize int

	Created  time.Time
	Expires  time.Time
	Referred time.Time

	Local Local
}

// NewDataset creates a dataset with every attribute unknown.
func NewDataset(name string) *Dataset {
	return &Dataset{name: name}
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	return d.name
}

// SetLocation sets volume, device and catalog.
func (d *Dataset) SetLocation(volume, device, catalog string) {
	d.Volume = volume
	d.Device = device
	d.Catalog = catalog
}

// SetSpace sets the space usage attributes.
func (d *Dataset) SetSpace(tracks, cylinders, extents, percent int) {
	d.Tracks = max(0, tracks)
	d.Cylinders = max(0, cylinders)
	d.Extents = max(0, extents)
	d.Percent = max(0, percent)
}

// SetDisposition sets the organization attributes.
func (d *Dataset) SetDisposition(dsorg, recfm string, lrecl, blksize int) {
	d.Dsorg = dsorg
	d.Recfm = recfm
	d.Lrecl = max(0, lrecl)
	d.Blksize = max(0, blksize)
}

// SetDates parses the three dates from listing text. Blank values are
// skipped; values that fail to parse stay unknown and are reported together.
func (d *Dataset) SetDates(created, expires, referred string) error {
	var errs []error
	for _, f := range []struct {
		label string
		text  string
		dst   *time.Time
	}{
		{"created", created, &d.Created},
		{"expires", expires, &d.Expires},
		{"referred", referred, &d.Referred},
	} {
		t, err := ParseDate(f.text)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s date: %w", f.label, err))
			continue
		}
		if !t.IsZero() {
			*f.dst = t
		}
	}
	return errors.Join(errs...)
}

// IsPartitioned reports whether the dataset is a PDS.
func (d *Dataset) IsPartitioned() bool {
	return d.Dsorg == DsorgPartitioned
}

// Clone returns an independent copy.
func (d *Dataset) Clone() *Dataset {
	c := *d
	return &c
}

// Merge copies every known field of other into d and reports whether d changed.
func (d *Dataset) Merge(other *Dataset) bool {
	changed := mergeInt(&d.Tracks, other.Tracks)
	changed = mergeInt(&d.Cylinders, other.Cylinders) || changed
	changed = mergeInt(&d.Extents, other.Extents) || changed
	changed = mergeInt(&d.Percent, other.Percent) || changed

	changed = mergeString(&d.Dsorg, other.Dsorg) || changed
	changed = mergeString(&d.Recfm, other.Recfm) || changed
	changed = mergeInt(&d.Lrecl, other.Lrecl) || changed
	changed = mergeInt(&d.Blksize, other.Blksize) || changed

	changed = mergeString(&d.Volume, other.Volume) || changed
	changed = mergeString(&d.Device, other.Device) || changed
	changed = mergeString(&d.Catalog, other.Catalog) || changed

	changed = mergeTime(&d.Created, other.Created) || changed
	changed = mergeTime(&d.Expires, other.Expires) || changed
	changed = mergeTime(&d.Referred, other.Referred) || changed

	return d.Local.merge(other.Local) || changed
}

// DiffersFrom reports whether any field known in other disagrees with d.
func (d *Dataset) DiffersFrom(other *Dataset) bool {
	return intDiffers(d.Tracks, other.Tracks) ||
		intDiffers(d.Cylinders, other.Cylinders) ||
		intDiffers(d.Extents, other.Extents) ||
		intDiffers(d.Percent, other.Percent) ||
		stringDiffers(d.Dsorg, other.Dsorg) ||
		stringDiffers(d.Recfm, other.Recfm) ||
		intDiffers(d.Lrecl, other.Lrecl) ||
		intDiffers(d.Blksize, other.Blksize) ||
		stringDiffers(d.Volume, other.Volume) ||
		stringDiffers(d.Device, other.Device) ||
		stringDiffers(d.Catalog, other.Catalog) ||
		timeDiffers(d.Created, other.Created) ||
		timeDiffers(d.Expires, other.Expires) ||
		timeDiffers(d.Referred, other.Referred) ||
		d.Local.differsFrom(other.Local)
}

// String renders the dataset as one listing line.
func (d *Dataset) String() string {
	return fmt.Sprintf("%-3s %-31s  %3d %3d  %-6s  %-6s  %3d  %3d  %-4s %5d %6d  %-10s %-10s %-10s %s",
		d.Dsorg, d.name, d.Tracks, d.Cylinders, d.Device, d.Volume,
		d.Extents, d.Percent, d.Recfm, d.Lrecl, d.Blksize,
		FormatDate(d.Created), FormatDate(d.Referred), FormatDate(d.Expires), d.Catalog)
}

// DatasetHeader returns the column titles matching Dataset.String.
func DatasetHeader() string {
	return fmt.Sprintf("%-3s %-31s  %3s %3s  %-6s  %-6s  %3s  %3s  %-4s %5s %6s  %-10s %-10s %-10s %s",
		"Org", "Dataset", "Trk", "Cyl", "Device", "Volume", "Ext", "Pct", "Fmt", "Lrecl", "Blksz",
		"Created", "Referred", "Expires", "Catalog")
}

// ParseDate parses a yyyy/MM/dd listing date. Blank text is the zero time.
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, text, time.UTC)
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func mergeInt(dst *int, v int) bool {
	if v <= 0 || *dst == v {
		return false
	}
	*dst = v
	return true
}

func mergeString(dst *string, v string) bool {
	if v == "" || *dst == v {
		return false
	}
	*dst = v
	return true
}

func mergeTime(dst *time.Time, v time.Time) bool {
	if v.IsZero() || dst.Equal(v) {
		return false
	}
	*dst = v.UTC()
	return true
}

func intDiffers(have, want int) bool {
	return want > 0 && have != want
}

func stringDiffers(have, want string) bool {
	return want != "" && have != want
}

func timeDiffers(have, want time.Time) bool {
	return !want.IsZero() && !have.Equal(want)
}
