package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/dberr"
)

func TestTablePage_InsertGetDelete(t *testing.T) {
	p := NewTablePage(0, InvalidPageID)

	slot1, err := p.InsertTuple(TupleMetadata{}, []byte("hello"))
	require.NoError(t, err)
	slot2, err := p.InsertTuple(TupleMetadata{}, []byte("world!!"))
	require.NoError(t, err)
	rid1 := RID{PageID: p.PageID(), Slot: slot1}
	rid2 := RID{PageID: p.PageID(), Slot: slot2}
	require.Equal(t, uint16(2), p.LiveCount())

	got1, err := p.GetTuple(rid1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got1)

	got2, err := p.GetTuple(rid2)
	require.NoError(t, err)
	require.Equal(t, []byte("world!!"), got2)

	require.NoError(t, p.UpdateTupleMetadata(rid1, TupleMetadata{Deleted: true}))
	require.Equal(t, uint16(1), p.LiveCount())
	require.Equal(t, uint16(1), p.DeletedCount())

	_, err = p.GetTuple(rid1)
	require.Error(t, err)

	entries := p.Iterate()
	require.Len(t, entries, 1)
	require.Equal(t, rid2, entries[0].RID)
}

func TestTablePage_InsertTuple_OutOfSpace(t *testing.T) {
	p := NewTablePage(0, InvalidPageID)
	big := make([]byte, PageSize)
	_, err := p.InsertTuple(TupleMetadata{}, big)
	require.Error(t, err)
	kind, ok := dberr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, dberr.KindOutOfSpace, kind)
}

func TestTablePage_UpdateTupleInPlaceUnchecked_RequiresEqualLength(t *testing.T) {
	p := NewTablePage(0, InvalidPageID)
	slot, err := p.InsertTuple(TupleMetadata{}, []byte("abcd"))
	require.NoError(t, err)
	rid := RID{PageID: p.PageID(), Slot: slot}

	require.Error(t, p.UpdateTupleInPlaceUnchecked(rid, TupleMetadata{}, []byte("abcde")))

	require.NoError(t, p.UpdateTupleInPlaceUnchecked(rid, TupleMetadata{}, []byte("wxyz")))
	got, err := p.GetTuple(rid)
	require.NoError(t, err)
	require.Equal(t, []byte("wxyz"), got)
}

func TestTablePage_SerializeDeserialize_RoundTrip(t *testing.T) {
	p := NewTablePage(5, 9)
	slot1, err := p.InsertTuple(TupleMetadata{}, []byte("foo"))
	require.NoError(t, err)
	rid1 := RID{PageID: p.PageID(), Slot: slot1}
	_, err = p.InsertTuple(TupleMetadata{}, []byte("barbaz"))
	require.NoError(t, err)
	require.NoError(t, p.UpdateTupleMetadata(rid1, TupleMetadata{Deleted: true}))

	buf := p.Serialize()
	require.Len(t, buf, PageSize)

	back, err := DeserializeTablePage(buf)
	require.NoError(t, err)
	require.Equal(t, PageID(5), back.PageID())
	require.Equal(t, PageID(9), back.NextPageID())
	require.Equal(t, uint16(1), back.LiveCount())
	require.Equal(t, uint16(1), back.DeletedCount())

	entries := back.Iterate()
	require.Len(t, entries, 1)
	require.Equal(t, []byte("barbaz"), entries[0].Payload)
}

func TestTablePage_ConcurrentReadersAndWriter(t *testing.T) {
	p := NewTablePage(0, InvalidPageID)
	slot, err := p.InsertTuple(TupleMetadata{}, []byte("xyz"))
	require.NoError(t, err)
	rid := RID{PageID: p.PageID(), Slot: slot}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = p.GetTuple(rid)
				_ = p.Iterate()
				_ = p.Serialize()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			_ = p.UpdateTupleMetadata(rid, TupleMetadata{Deleted: j%2 == 0})
		}
	}()
	wg.Wait()
}

func TestTablePage_CheckRID_WrongPage(t *testing.T) {
	p := NewTablePage(1, InvalidPageID)
	slot, err := p.InsertTuple(TupleMetadata{}, []byte("x"))
	require.NoError(t, err)
	rid := RID{PageID: p.PageID(), Slot: slot}

	other := NewTablePage(2, InvalidPageID)
	_, err = other.GetTuple(rid)
	require.Error(t, err)
}
