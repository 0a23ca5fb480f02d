package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the listing format for a member's last-changed time.
const TimestampLayout = "2006/01/02 15:04:05"

// Member is one entry of a partitioned dataset.
type Member struct {
	dataset string
	name    string

	ID   string
	Size int
	Init int
	Mod  int
	VV   int
	MM   int

	Created time.Time
	Changed time.Time

	Local Local
}

// NewMember creates a member of the named dataset with every attribute unknown.
func NewMember(dataset, name string) *Member {
	return &Member{dataset: dataset, name: name}
}

// Name returns the member name.
func (m *Member) Name() string {
	return m.name
}

// DatasetName returns the name of the owning dataset.
func (m *Member) DatasetName() string {
	return m.dataset
}

// SetSize sets the ISPF statistics counters.
func (m *Member) SetSize(size, init, mod, vv, mm int) {
	m.Size = max(0, size)
	m.Init = max(0, init)
	m.Mod = max(0, mod)
	m.VV = max(0, vv)
	m.MM = max(0, mm)
}

// SetDates parses the created date and the changed timestamp from listing text.
func (m *Member) SetDates(created, changed string) error {
	var errs []error
	if t, err := ParseDate(created); err != nil {
		errs = append(errs, fmt.Errorf("invalid created date: %w", err))
	} else if !t.IsZero() {
		m.Created = t
	}
	if t, err := ParseTimestamp(changed); err != nil {
		errs = append(errs, fmt.Errorf("invalid changed date: %w", err))
	} else if !t.IsZero() {
		m.Changed = t
	}
	return errors.Join(errs...)
}

// Clone returns an independent copy.
func (m *Member) Clone() *Member {
	c := *m
	return &c
}

// Merge copies every known field of other into m and reports whether m changed.
func (m *Member) Merge(other *Member) bool {
	changed := mergeInt(&m.Size, other.Size)
	changed = mergeInt(&m.Init, other.Init) || changed
	changed = mergeInt(&m.Mod, other.Mod) || changed
	changed = mergeInt(&m.VV, other.VV) || changed
	changed = mergeInt(&m.MM, other.MM) || changed
	changed = mergeString(&m.ID, other.ID) || changed
	changed = mergeTime(&m.Created, other.Created) || changed
	changed = mergeTime(&m.Changed, other.Changed) || changed
	return m.Local.merge(other.Local) || changed
}

// DiffersFrom reports whether any field known in other disagrees with m.
func (m *Member) DiffersFrom(other *Member) bool {
	return intDiffers(m.Size, other.Size) ||
		intDiffers(m.Init, other.Init) ||
		intDiffers(m.Mod, other.Mod) ||
		intDiffers(m.VV, other.VV) ||
		intDiffers(m.MM, other.MM) ||
		stringDiffers(m.ID, other.ID) ||
		timeDiffers(m.Created, other.Created) ||
		timeDiffers(m.Changed, other.Changed) ||
		m.Local.differsFrom(other.Local)
}

// String renders the member as one listing line.
func (m *Member) String() string {
	changed := ""
	if !m.Changed.IsZero() {
		changed = m.Changed.Format(TimestampLayout)
	}
	return fmt.Sprintf("%-8s  %5d  %-8s %5d  %3d  %2d  %2d  %-10s %s",
		m.name, m.Size, m.ID, m.Init, m.Mod, m.VV, m.MM, FormatDate(m.Created), changed)
}

// MemberHeader returns the column titles matching Member.String.
func MemberHeader() string {
	return fmt.Sprintf("%-8s  %5s  %-8s %5s  %3s  %2s  %2s  %-10s %s",
		"Member", "Size", "ID", "Init", "Mod", "VV", "MM", "Created", "Changed")
}

// ParseTimestamp parses a yyyy/MM/dd HH:mm:ss listing timestamp. Blank text
// is the zero time.
func ParseTimestamp(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(TimestampLayout, text, time.UTC)
}
