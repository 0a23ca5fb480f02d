package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetOrCreateAndReplace(t *testing.T) {
	c := NewCache()
	_, ok := c.Entry("USER.DATA")
	assert.False(t, ok, "entries are created lazily")

	first := NewDataset("USER.DATA")
	e := c.GetOrCreate(first)
	assert.Same(t, first, e.Dataset())

	again := c.GetOrCreate(NewDataset("USER.DATA"))
	assert.Same(t, e, again)
	assert.Same(t, first, again.Dataset())

	e.PutMember(NewMember("USER.DATA", "A"))
	second := NewDataset("USER.DATA")
	second.Lrecl = 80
	c.Replace(second)

	got, ok := c.Entry("USER.DATA")
	require.True(t, ok)
	assert.Same(t, second, got.Dataset())
	assert.Equal(t, 1, got.MemberCount(), "replace keeps members")
}

func TestCacheAddMemberMergesResident(t *testing.T) {
	c := NewCache()
	assert.Nil(t, c.AddMember(NewMember("USER.PDS", "A")))

	c.GetOrCreate(NewDataset("USER.PDS"))

	first := NewMember("USER.PDS", "A")
	first.Size = 10
	assert.Same(t, first, c.AddMember(first))

	second := NewMember("USER.PDS", "A")
	second.ID = "IBMUSER"
	resident := c.AddMember(second)
	assert.Same(t, first, resident)
	assert.Equal(t, 10, resident.Size)
	assert.Equal(t, "IBMUSER", resident.ID)
}

func TestCachePutMemberOverwrites(t *testing.T) {
	c := NewCache()
	assert.False(t, c.PutMember(NewMember("USER.PDS", "A")))

	c.GetOrCreate(NewDataset("USER.PDS"))
	first := NewMember("USER.PDS", "A")
	first.Size = 10
	require.True(t, c.PutMember(first))

	second := NewMember("USER.PDS", "A")
	require.True(t, c.PutMember(second))

	e, _ := c.Entry("USER.PDS")
	m, ok := e.Member("A")
	require.True(t, ok)
	assert.Same(t, second, m)
	assert.Equal(t, 0, m.Size)
}

func TestCacheMembersAreOrdered(t *testing.T) {
	c := NewCache()
	e := c.GetOrCreate(NewDataset("USER.PDS"))
	for _, name := range []string{"ZETA", "ALPHA", "MEMBER1", "BETA"} {
		e.AddMember(NewMember("USER.PDS", name))
	}

	var names []string
	for _, m := range e.Members() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"ALPHA", "BETA", "MEMBER1", "ZETA"}, names)

	c.RemoveMember("USER.PDS", "BETA")
	assert.Equal(t, 3, e.MemberCount())
}

func TestCacheRemoveAndClear(t *testing.T) {
	c := NewCache()
	c.GetOrCreate(NewDataset("B"))
	c.GetOrCreate(NewDataset("A"))
	assert.Equal(t, []string{"A", "B"}, c.Names())

	c.Remove("A")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
