package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StartsWithDefaultEntry(t *testing.T) {
	s := NewStore()

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ID)
	assert.Equal(t, "Sequence1", entries[0].Name)
	assert.Equal(t, "", entries[0].Value)
	assert.True(t, entries[0].Visible)
}

func TestStore_Add_AssignsMonotonicIDs(t *testing.T) {
	s := NewStore()

	// Initial store holds id 1; adding N entries yields ids 2..N+1.
	for want := 2; want <= 6; want++ {
		e := s.Add()
		assert.Equal(t, want, e.ID)
		assert.Equal(t, "Sequence"+string(rune('0'+want)), e.Name)
		assert.True(t, e.Visible)
		assert.Equal(t, "", e.Value)
	}
	assert.Equal(t, 6, s.Len())
}

func TestStore_Remove_NeverReusesIDs(t *testing.T) {
	s := NewStore()
	e2 := s.Add()
	e3 := s.Add()

	require.True(t, s.Remove(e3.ID))
	require.True(t, s.Remove(e2.ID))

	// Ids 2 and 3 are retired even though their entries are gone.
	e4 := s.Add()
	assert.Equal(t, 4, e4.ID)
	assert.Equal(t, 5, s.NextID())
}

func TestStore_Remove_PreservesRelativeOrder(t *testing.T) {
	s := NewStore()
	s.Add() // 2
	s.Add() // 3
	s.Add() // 4

	require.True(t, s.Remove(3))

	var ids []int
	for _, e := range s.Entries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{1, 2, 4}, ids)
}

func TestStore_Rename_AllowsDuplicateNames(t *testing.T) {
	s := NewStore()
	e2 := s.Add()

	require.True(t, s.Rename(e2.ID, "Sequence1"))

	entries := s.Entries()
	assert.Equal(t, "Sequence1", entries[0].Name)
	assert.Equal(t, "Sequence1", entries[1].Name)
	// Renaming one entry never touches the other.
	assert.Equal(t, 1, entries[0].ID)
	assert.Equal(t, e2.ID, entries[1].ID)
}

func TestStore_SetValue_PreservesIdentity(t *testing.T) {
	s := NewStore()

	require.True(t, s.SetValue(1, "ACGT"))

	e, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "ACGT", e.Value)
	assert.Equal(t, "Sequence1", e.Name)
}

func TestStore_ToggleVisible(t *testing.T) {
	s := NewStore()

	visible, ok := s.ToggleVisible(1)
	require.True(t, ok)
	assert.False(t, visible)

	visible, ok = s.ToggleVisible(1)
	require.True(t, ok)
	assert.True(t, visible)
}

func TestStore_AbsentID_IsNoOp(t *testing.T) {
	s := NewStore()

	assert.False(t, s.Rename(99, "x"))
	assert.False(t, s.SetValue(99, "x"))
	_, ok := s.ToggleVisible(99)
	assert.False(t, ok)
	assert.False(t, s.Remove(99))

	// Nothing changed.
	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{ID: 1, Name: "Sequence1", Visible: true}, entries[0])
}

func TestStore_Entries_ReturnsCopy(t *testing.T) {
	s := NewStore()

	entries := s.Entries()
	entries[0].Name = "mutated"

	fresh := s.Entries()
	assert.Equal(t, "Sequence1", fresh[0].Name)
}
