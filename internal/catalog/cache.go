package catalog

import (
	"maps"
	"slices"
)

// CacheEntry is one dataset plus the members seen for it.
type CacheEntry struct {
	dataset *Dataset
	members map[string]*Member // member name -> member
}

func newCacheEntry(dataset *Dataset) *CacheEntry {
	return &CacheEntry{
		dataset: dataset,
		members: make(map[string]*Member),
	}
}

// Dataset returns the cached dataset.
func (e *CacheEntry) Dataset() *Dataset {
	return e.dataset
}

// Replace swaps the cached dataset and keeps the members.
func (e *CacheEntry) Replace(dataset *Dataset) {
	e.dataset = dataset
}

// PutMember stores the member, overwriting any member of the same name.
func (e *CacheEntry) PutMember(member *Member) {
	e.members[member.Name()] = member
}

// AddMember inserts the member, or merges it into the resident member of the
// same name. The resident member is returned.
func (e *CacheEntry) AddMember(member *Member) *Member {
	current, ok := e.members[member.Name()]
	if !ok {
		e.members[member.Name()] = member
		return member
	}
	current.Merge(member)
	return current
}

// Member returns the cached member with the given name.
func (e *CacheEntry) Member(name string) (*Member, bool) {
	m, ok := e.members[name]
	return m, ok
}

// RemoveMember drops a member from the entry.
func (e *CacheEntry) RemoveMember(name string) {
	delete(e.members, name)
}

// Members returns the cached members ordered by name.
func (e *CacheEntry) Members() []*Member {
	out := make([]*Member, 0, len(e.members))
	for _, name := range slices.Sorted(maps.Keys(e.members)) {
		out = append(out, e.members[name])
	}
	return out
}

// MemberCount returns the number of cached members.
func (e *CacheEntry) MemberCount() int {
	return len(e.members)
}

// Cache indexes catalog entries by dataset name. It has no locking and must
// only be used by the goroutine that owns it.
type Cache struct {
	entries map[string]*CacheEntry // dataset name -> entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*CacheEntry)}
}

// Entry returns the entry for a dataset name.
func (c *Cache) Entry(name string) (*CacheEntry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// GetOrCreate returns the entry for the dataset, creating it from dataset when
// the name has not been seen.
func (c *Cache) GetOrCreate(dataset *Dataset) *CacheEntry {
	if e, ok := c.entries[dataset.Name()]; ok {
		return e
	}
	e := newCacheEntry(dataset)
	c.entries[dataset.Name()] = e
	return e
}

// Replace installs dataset as the cached state for its name, keeping any
// cached members.
func (c *Cache) Replace(dataset *Dataset) *CacheEntry {
	e, ok := c.entries[dataset.Name()]
	if !ok {
		e = newCacheEntry(dataset)
		c.entries[dataset.Name()] = e
		return e
	}
	e.Replace(dataset)
	return e
}

// PutMember overwrites the member in its dataset's entry. The entry must exist.
func (c *Cache) PutMember(member *Member) bool {
	e, ok := c.entries[member.DatasetName()]
	if !ok {
		return false
	}
	e.PutMember(member)
	return true
}

// AddMember merges or inserts the member into its dataset's entry and returns
// the resident member, or nil when the dataset is not cached.
func (c *Cache) AddMember(member *Member) *Member {
	e, ok := c.entries[member.DatasetName()]
	if !ok {
		return nil
	}
	return e.AddMember(member)
}

// Remove drops the entry and all of its members.
func (c *Cache) Remove(name string) {
	delete(c.entries, name)
}

// RemoveMember drops one member from a cached dataset.
func (c *Cache) RemoveMember(dataset, member string) {
	if e, ok := c.entries[dataset]; ok {
		e.RemoveMember(member)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Names returns the cached dataset names in order.
func (c *Cache) Names() []string {
	return slices.Sorted(maps.Keys(c.entries))
}
