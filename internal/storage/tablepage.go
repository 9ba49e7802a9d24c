package storage

import (
	"encoding/binary"
	"sync"

	"github.com/relcore/relcore/internal/dberr"
)

const (
	headerFixedSize = 4 + 4 + 2 + 2 // page_id, next_page_id, live count, deleted count
	slotEntrySize   = 4             // offset:u16, size:u16
)

// slotInfo mirrors one slot-directory entry plus the metadata carried
// alongside it in memory (the on-disk tombstone encoding is {0,0}, which
// collapses metadata into the directory itself — see Serialize).
type slotInfo struct {
	offset uint16
	size   uint16
	meta   TupleMetadata
}

// TablePage is one slotted page of a table's page chain: header and slot
// directory grow from offset 0, tuple payloads grow inward from the tail.
//
// The buffer pool hands out a TablePage's pointer to multiple pinning
// callers concurrently; mu is the frame's reader-writer lock guarding
// the resident bytes, separate from the pool's own mutex over the page
// table and free list.
type TablePage struct {
	mu           sync.RWMutex
	pageID       PageID
	nextPageID   PageID
	data         [PageSize]byte
	liveCount    uint16
	deletedCount uint16
	slots        []slotInfo
	dirty        bool
}

// NewTablePage allocates a fresh, empty table page.
func NewTablePage(pageID, nextPageID PageID) *TablePage {
	return &TablePage{pageID: pageID, nextPageID: nextPageID}
}

func (p *TablePage) PageID() PageID { return p.pageID }

func (p *TablePage) NextPageID() PageID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nextPageID
}

func (p *TablePage) SetNextPageID(id PageID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextPageID = id
}

func (p *TablePage) LiveCount() uint16 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.liveCount
}

func (p *TablePage) DeletedCount() uint16 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.deletedCount
}

func (p *TablePage) IsDirty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirty
}

func (p *TablePage) SetDirty(d bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = d
}

// totalSlots requires the caller to hold p.mu (read or write).
func (p *TablePage) totalSlots() uint16 { return uint16(len(p.slots)) }

// headerSize returns the byte length of header + slot directory for a
// page currently holding n slots.
func headerSize(n uint16) int {
	return headerFixedSize + int(n)*slotEntrySize
}

// InsertTuple appends payload as a new slot, returning its SlotID, or
// dberr.OutOfSpace if the page has no room.
func (p *TablePage) InsertTuple(meta TupleMetadata, payload []byte) (SlotID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.totalSlots()
	dataSpace := 0
	if n > 0 {
		dataSpace = PageSize - int(p.slots[n-1].offset)
	}
	metaSpace := headerSize(n)
	available := PageSize - metaSpace - dataSpace
	needed := slotEntrySize + len(payload)
	if available < needed {
		return 0, dberr.New(dberr.KindOutOfSpace, "table page: insufficient free space for tuple")
	}

	fromByte := PageSize - 1
	if n > 0 {
		fromByte = int(p.slots[n-1].offset) - 1
	}
	offset := fromByte - len(payload) + 1

	copy(p.data[offset:offset+len(payload)], payload)

	p.slots = append(p.slots, slotInfo{offset: uint16(offset), size: uint16(len(payload)), meta: meta})
	if meta.Deleted {
		p.deletedCount++
	} else {
		p.liveCount++
	}
	p.dirty = true
	return SlotID(n), nil
}

// checkRID requires the caller to already hold p.mu (read or write).
func (p *TablePage) checkRID(rid RID) error {
	if rid.PageID != p.pageID {
		return dberr.New(dberr.KindInvalidInput, "table page: rid belongs to a different page")
	}
	if uint16(rid.Slot) >= p.totalSlots() {
		return dberr.New(dberr.KindInvalidInput, "table page: rid slot out of range")
	}
	return nil
}

// GetTuple returns a copy of the payload bytes for rid, failing if the
// slot is out of range, belongs to a different page, or is tombstoned.
func (p *TablePage) GetTuple(rid RID) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.checkRID(rid); err != nil {
		return nil, err
	}
	info := p.slots[rid.Slot]
	if info.meta.Deleted {
		return nil, dberr.New(dberr.KindInvalidInput, "table page: rid refers to a deleted tuple")
	}
	out := make([]byte, info.size)
	copy(out, p.data[info.offset:int(info.offset)+int(info.size)])
	return out, nil
}

// GetTupleMetadata returns the metadata for rid's slot.
func (p *TablePage) GetTupleMetadata(rid RID) (TupleMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.checkRID(rid); err != nil {
		return TupleMetadata{}, err
	}
	return p.slots[rid.Slot].meta, nil
}

// UpdateTupleMetadata replaces rid's metadata, adjusting live/deleted
// counts if the deleted bit flips.
func (p *TablePage) UpdateTupleMetadata(rid RID, meta TupleMetadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkRID(rid); err != nil {
		return err
	}
	old := p.slots[rid.Slot].meta
	p.adjustCounts(old.Deleted, meta.Deleted)
	p.slots[rid.Slot].meta = meta
	p.dirty = true
	return nil
}

// UpdateTupleInPlaceUnchecked overwrites rid's payload and metadata.
// payload must be exactly the slot's existing size.
func (p *TablePage) UpdateTupleInPlaceUnchecked(rid RID, meta TupleMetadata, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkRID(rid); err != nil {
		return err
	}
	info := p.slots[rid.Slot]
	if int(info.size) != len(payload) {
		return dberr.New(dberr.KindInvalidInput, "table page: in-place update requires equal payload length")
	}
	p.adjustCounts(info.meta.Deleted, meta.Deleted)
	p.slots[rid.Slot].meta = meta
	copy(p.data[info.offset:int(info.offset)+int(info.size)], payload)
	p.dirty = true
	return nil
}

func (p *TablePage) adjustCounts(oldDeleted, newDeleted bool) {
	switch {
	case oldDeleted && !newDeleted:
		p.liveCount++
		p.deletedCount--
	case !oldDeleted && newDeleted:
		p.liveCount--
		p.deletedCount++
	}
}

// Iterate returns (rid, payload) for every live slot in ascending slot
// order, skipping tombstones. Takes the page's shared lock for the
// duration of the scan, so the returned slice is a consistent snapshot.
func (p *TablePage) Iterate() []TupleEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]TupleEntry, 0, p.liveCount)
	for i, s := range p.slots {
		if s.meta.Deleted {
			continue
		}
		rid := RID{PageID: p.pageID, Slot: SlotID(i)}
		payload := make([]byte, s.size)
		copy(payload, p.data[s.offset:int(s.offset)+int(s.size)])
		out = append(out, TupleEntry{RID: rid, Payload: payload})
	}
	return out
}

// TupleEntry pairs a record id with a copy of its raw payload bytes.
type TupleEntry struct {
	RID     RID
	Payload []byte
}

// Serialize writes header and slot directory over the page's byte
// buffer (payload bytes are already resident) and returns the full
// PageSize-byte image.
func (p *TablePage) Serialize() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := p.data
	binary.LittleEndian.PutUint32(out[0:4], uint32(p.pageID))
	binary.LittleEndian.PutUint32(out[4:8], uint32(p.nextPageID))
	binary.LittleEndian.PutUint16(out[8:10], p.liveCount)
	binary.LittleEndian.PutUint16(out[10:12], p.deletedCount)
	cur := 12
	for _, s := range p.slots {
		if s.meta.Deleted {
			out[cur] = 0
			out[cur+1] = 0
			out[cur+2] = 0
			out[cur+3] = 0
		} else {
			binary.LittleEndian.PutUint16(out[cur:cur+2], s.offset)
			binary.LittleEndian.PutUint16(out[cur+2:cur+4], s.size)
		}
		cur += slotEntrySize
	}
	result := make([]byte, PageSize)
	copy(result, out[:])
	return result
}

// DeserializeTablePage reconstructs a TablePage from a PageSize-byte
// image, as produced by Serialize. A slot directory entry of {0,0}
// round-trips as a tombstone with unknown original offset/size.
func DeserializeTablePage(buf []byte) (*TablePage, error) {
	if len(buf) != PageSize {
		return nil, dberr.New(dberr.KindInvalidInput, "table page: buffer is not PageSize bytes")
	}
	p := &TablePage{}
	copy(p.data[:], buf)
	p.pageID = PageID(binary.LittleEndian.Uint32(buf[0:4]))
	p.nextPageID = PageID(binary.LittleEndian.Uint32(buf[4:8]))
	p.liveCount = binary.LittleEndian.Uint16(buf[8:10])
	p.deletedCount = binary.LittleEndian.Uint16(buf[10:12])

	total := p.liveCount + p.deletedCount
	p.slots = make([]slotInfo, total)
	cur := 12
	for i := uint16(0); i < total; i++ {
		offset := binary.LittleEndian.Uint16(buf[cur : cur+2])
		size := binary.LittleEndian.Uint16(buf[cur+2 : cur+4])
		cur += slotEntrySize
		deleted := offset == 0 && size == 0
		p.slots[i] = slotInfo{offset: offset, size: size, meta: TupleMetadata{Deleted: deleted}}
	}
	return p, nil
}
