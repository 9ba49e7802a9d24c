package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/bufferpool"
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

func newTestTxn(t *testing.T, poolSize int) (*MemCatalog, *HeapTransaction) {
	t.Helper()
	disk := storage.NewMemDiskManager()
	pool := bufferpool.New(poolSize, 2, disk)
	cat := NewMemCatalog()
	return cat, NewHeapTransaction(cat, pool)
}

func TestHeapTransaction_InsertThenScan(t *testing.T) {
	cat, txn := newTestTxn(t, 4)
	require.NoError(t, cat.CreateTable(schemaFor("people")))

	rids, err := txn.Insert("people", []field.Row{
		field.NewRow([]field.Field{field.Integer(1), field.String("alice")}),
		field.NewRow([]field.Field{field.Integer(2), field.Null}),
	})
	require.NoError(t, err)
	require.Len(t, rids, 2)

	entries, err := txn.Scan("people", nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, int32(1), entries[0].Row.Get(0).Int())
	require.True(t, entries[1].Row.Get(1).IsNull())
}

func TestHeapTransaction_ScanWithPushdown(t *testing.T) {
	cat, txn := newTestTxn(t, 4)
	require.NoError(t, cat.CreateTable(schemaFor("people")))

	_, err := txn.Insert("people", []field.Row{
		field.NewRow([]field.Field{field.Integer(1), field.String("a")}),
		field.NewRow([]field.Field{field.Integer(2), field.String("b")}),
	})
	require.NoError(t, err)

	entries, err := txn.Scan("people", func(r field.Row) bool {
		return r.Get(0).Int() == 2
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int32(2), entries[0].Row.Get(0).Int())
}

func TestHeapTransaction_DeleteTombstones(t *testing.T) {
	cat, txn := newTestTxn(t, 4)
	require.NoError(t, cat.CreateTable(schemaFor("people")))

	rids, err := txn.Insert("people", []field.Row{
		field.NewRow([]field.Field{field.Integer(1), field.String("a")}),
	})
	require.NoError(t, err)

	require.NoError(t, txn.Delete("people", rids))

	entries, err := txn.Scan("people", nil)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestHeapTransaction_UpdateInPlace(t *testing.T) {
	cat, txn := newTestTxn(t, 4)
	require.NoError(t, cat.CreateTable(schemaFor("people")))

	rids, err := txn.Insert("people", []field.Row{
		field.NewRow([]field.Field{field.Integer(1), field.String("ab")}),
	})
	require.NoError(t, err)

	updated := field.NewRow([]field.Field{field.Integer(1), field.String("cd")})
	require.NoError(t, txn.Update("people", map[storage.RID]field.Row{rids[0]: updated}))

	entries, err := txn.Scan("people", nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "cd", entries[0].Row.Get(1).Str())
}

func TestHeapTransaction_UpdateFallsBackToTombstoneAndReinsert(t *testing.T) {
	cat, txn := newTestTxn(t, 4)
	require.NoError(t, cat.CreateTable(schemaFor("people")))

	rids, err := txn.Insert("people", []field.Row{
		field.NewRow([]field.Field{field.Integer(1), field.String("ab")}),
	})
	require.NoError(t, err)

	// Longer string forces a different encoded length, so Update must
	// tombstone the old slot and append a new tuple instead of updating
	// in place.
	longer := field.NewRow([]field.Field{field.Integer(1), field.String("a much longer name")})
	require.NoError(t, txn.Update("people", map[storage.RID]field.Row{rids[0]: longer}))

	entries, err := txn.Scan("people", nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a much longer name", entries[0].Row.Get(1).Str())
}

func TestHeapTransaction_InsertExtendsPageChain(t *testing.T) {
	cat, txn := newTestTxn(t, 4)
	require.NoError(t, cat.CreateTable(schemaFor("wide")))

	big := make([]field.Row, 0, 400)
	for i := 0; i < 400; i++ {
		big = append(big, field.NewRow([]field.Field{field.Integer(int32(i)), field.String("row-value-padding")}))
	}
	rids, err := txn.Insert("wide", big)
	require.NoError(t, err)
	require.Len(t, rids, 400)

	entries, err := txn.Scan("wide", nil)
	require.NoError(t, err)
	require.Len(t, entries, 400)

	pages := make(map[storage.PageID]bool)
	for _, r := range rids {
		pages[r.PageID] = true
	}
	require.Greater(t, len(pages), 1, "expected insert to span multiple pages")
}
