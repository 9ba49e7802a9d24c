package replacer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUK_EvictsInfiniteDistanceFirst(t *testing.T) {
	r := New(4, WithK(2))

	// frame 0 accessed twice -> finite backward distance.
	require.NoError(t, r.RecordAccess(0, AccessLookup))
	require.NoError(t, r.RecordAccess(0, AccessLookup))
	require.NoError(t, r.SetEvictable(0, true))

	// frame 1 accessed once -> infinite backward distance (< k history).
	require.NoError(t, r.RecordAccess(1, AccessLookup))
	require.NoError(t, r.SetEvictable(1, true))

	victim, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, FrameID(1), victim)
}

func TestLRUK_TiesBreakByLeastRecentAccess(t *testing.T) {
	r := New(4, WithK(2))

	require.NoError(t, r.RecordAccess(0, AccessLookup))
	require.NoError(t, r.SetEvictable(0, true))
	require.NoError(t, r.RecordAccess(1, AccessLookup))
	require.NoError(t, r.SetEvictable(1, true))

	// Both have fewer than k=2 accesses, so both have infinite backward
	// distance; the tie goes to frame 0, whose last access is older.
	victim, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, FrameID(0), victim)
}

func TestLRUK_NonEvictableFrameIsSkipped(t *testing.T) {
	r := New(2, WithK(2))
	require.NoError(t, r.RecordAccess(0, AccessLookup))
	require.NoError(t, r.RecordAccess(0, AccessLookup))
	// never set evictable
	_, ok := r.Evict()
	require.False(t, ok)
}

func TestLRUK_SetEvictable_UnknownFrame(t *testing.T) {
	r := New(2)
	require.Error(t, r.SetEvictable(0, true))
}

func TestLRUK_Remove_NonEvictableFails(t *testing.T) {
	r := New(2)
	require.NoError(t, r.RecordAccess(0, AccessLookup))
	require.Error(t, r.Remove(0))
}

func TestLRUK_SizeTracksEvictableCount(t *testing.T) {
	r := New(2)
	require.NoError(t, r.RecordAccess(0, AccessLookup))
	require.NoError(t, r.RecordAccess(1, AccessLookup))
	require.NoError(t, r.SetEvictable(0, true))
	require.NoError(t, r.SetEvictable(1, true))
	require.Equal(t, 2, r.Size())

	_, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, r.Size())
}
