package catalog

import (
	"log/slog"

	"github.com/relcore/relcore/internal/bufferpool"
	"github.com/relcore/relcore/internal/dberr"
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// RowEntry pairs a record id with its decoded row, the unit Scan
// produces and the write operators consume.
type RowEntry struct {
	RID storage.RID
	Row field.Row
}

// Transaction is the narrow boundary the execution engine's write
// operators and Scan are built against.
type Transaction interface {
	Scan(table string, pushdown func(field.Row) bool) ([]RowEntry, error)
	Insert(table string, rows []field.Row) ([]storage.RID, error)
	Update(table string, updates map[storage.RID]field.Row) error
	Delete(table string, rids []storage.RID) error
}

// HeapTransaction implements Transaction over a MemCatalog's table-page
// chains through a shared buffer pool, grounded on the teacher's
// pin/unpin-per-operation heap table discipline.
type HeapTransaction struct {
	catalog *MemCatalog
	pool    *bufferpool.Pool
}

var _ Transaction = (*HeapTransaction)(nil)

// NewHeapTransaction builds a Transaction over catalog's tables using pool.
func NewHeapTransaction(catalog *MemCatalog, pool *bufferpool.Pool) *HeapTransaction {
	return &HeapTransaction{catalog: catalog, pool: pool}
}

func (h *HeapTransaction) entry(table string) (*tableEntry, error) {
	h.catalog.mu.RLock()
	e, ok := h.catalog.tables[table]
	h.catalog.mu.RUnlock()
	if !ok {
		return nil, dberr.New(dberr.KindNotFound, "transaction: no such table: "+table)
	}
	return e, nil
}

// Scan streams (rid, row) across the table's page chain in page-chain
// order then slot order, applying pushdown if provided.
func (h *HeapTransaction) Scan(table string, pushdown func(field.Row) bool) ([]RowEntry, error) {
	e, err := h.entry(table)
	if err != nil {
		return nil, err
	}
	width := e.schema.Width()

	var out []RowEntry
	for pid := e.firstPage; pid != storage.InvalidPageID; {
		page, ok, err := h.pool.FetchPage(pid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, dberr.New(dberr.KindInternal, "transaction: scan could not fetch page")
		}
		for _, t := range page.Iterate() {
			row, err := field.Decode(t.Payload, width)
			if err != nil {
				h.pool.UnpinPage(pid, false)
				return nil, err
			}
			if pushdown == nil || pushdown(row) {
				out = append(out, RowEntry{RID: t.RID, Row: row})
			}
		}
		next := page.NextPageID()
		h.pool.UnpinPage(pid, false)
		pid = next
	}
	return out, nil
}

// Insert appends rows to the table's page chain, allocating new pages
// via the buffer pool as earlier pages run out of room.
func (h *HeapTransaction) Insert(table string, rows []field.Row) ([]storage.RID, error) {
	h.catalog.mu.Lock()
	e, ok := h.catalog.tables[table]
	h.catalog.mu.Unlock()
	if !ok {
		return nil, dberr.New(dberr.KindNotFound, "transaction: no such table: "+table)
	}

	rids := make([]storage.RID, 0, len(rows))
	for _, row := range rows {
		payload, err := field.Encode(row)
		if err != nil {
			return nil, err
		}
		rid, err := h.insertOne(e, payload)
		if err != nil {
			return nil, err
		}
		rids = append(rids, rid)
	}
	return rids, nil
}

func (h *HeapTransaction) insertOne(e *tableEntry, payload []byte) (storage.RID, error) {
	if e.lastPage == storage.InvalidPageID {
		page, pid, err := h.pool.NewPage()
		if err != nil {
			return storage.RID{}, err
		}
		if page == nil {
			return storage.RID{}, dberr.New(dberr.KindInternal, "transaction: buffer pool exhausted")
		}
		e.firstPage = pid
		e.lastPage = pid
		h.pool.UnpinPage(pid, true)
	}

	pid := e.lastPage
	for {
		page, ok, err := h.pool.FetchPage(pid)
		if err != nil {
			return storage.RID{}, err
		}
		if !ok {
			return storage.RID{}, dberr.New(dberr.KindInternal, "transaction: could not fetch last page")
		}
		slot, err := page.InsertTuple(storage.TupleMetadata{}, payload)
		if err == nil {
			h.pool.UnpinPage(pid, true)
			return storage.RID{PageID: pid, Slot: slot}, nil
		}
		if kind, isDBErr := dberr.KindOf(err); !isDBErr || kind != dberr.KindOutOfSpace {
			h.pool.UnpinPage(pid, false)
			return storage.RID{}, err
		}

		// Page is full: extend the chain.
		newPage, newPid, err := h.pool.NewPage()
		if err != nil {
			h.pool.UnpinPage(pid, false)
			return storage.RID{}, err
		}
		if newPage == nil {
			h.pool.UnpinPage(pid, false)
			return storage.RID{}, dberr.New(dberr.KindInternal, "transaction: buffer pool exhausted while extending chain")
		}
		page.SetNextPageID(newPid)
		h.pool.UnpinPage(pid, true)
		h.pool.UnpinPage(newPid, true)
		e.lastPage = newPid
		pid = newPid
		slog.Debug("transaction: extended page chain", "newPage", newPid)
	}
}

// Update applies updates by rid: in-place when the new payload is the
// same length as the existing slot, otherwise tombstone-and-reinsert
// (policy delegated per the contract — here, delete then append).
func (h *HeapTransaction) Update(table string, updates map[storage.RID]field.Row) error {
	e, err := h.entry(table)
	if err != nil {
		return err
	}
	width := e.schema.Width()

	for rid, row := range updates {
		payload, err := field.Encode(row)
		if err != nil {
			return err
		}
		page, ok, err := h.pool.FetchPage(rid.PageID)
		if err != nil {
			return err
		}
		if !ok {
			return dberr.New(dberr.KindInternal, "transaction: update could not fetch page")
		}

		existing, getErr := page.GetTuple(rid)
		if getErr == nil && len(existing) == len(payload) {
			err = page.UpdateTupleInPlaceUnchecked(rid, storage.TupleMetadata{}, payload)
			h.pool.UnpinPage(rid.PageID, err == nil)
			if err != nil {
				return err
			}
			continue
		}
		if err := page.UpdateTupleMetadata(rid, storage.TupleMetadata{Deleted: true}); err != nil {
			h.pool.UnpinPage(rid.PageID, false)
			return err
		}
		h.pool.UnpinPage(rid.PageID, true)

		if _, err := h.Insert(table, []field.Row{field.NewRow(makeWidth(row, width))}); err != nil {
			return err
		}
	}
	return nil
}

func makeWidth(row field.Row, width int) []field.Field {
	out := make([]field.Field, width)
	for i := 0; i < width && i < row.Width(); i++ {
		out[i] = row.Get(i)
	}
	return out
}

// Delete tombstones every rid.
func (h *HeapTransaction) Delete(table string, rids []storage.RID) error {
	if _, err := h.entry(table); err != nil {
		return err
	}
	for _, rid := range rids {
		page, ok, err := h.pool.FetchPage(rid.PageID)
		if err != nil {
			return err
		}
		if !ok {
			return dberr.New(dberr.KindInternal, "transaction: delete could not fetch page")
		}
		err = page.UpdateTupleMetadata(rid, storage.TupleMetadata{Deleted: true})
		h.pool.UnpinPage(rid.PageID, err == nil)
		if err != nil {
			return err
		}
	}
	return nil
}
