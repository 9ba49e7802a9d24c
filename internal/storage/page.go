// Package storage implements the slotted table-page format and the
// disk-manager boundary the buffer pool reads and writes through.
package storage

import "math"

// PageSize is the fixed size of every page, in bytes.
const PageSize = 4096

// PageID identifies a page within a disk manager's page file.
type PageID uint32

// InvalidPageID terminates a table's page chain and marks a page handle
// that has not been allocated.
const InvalidPageID PageID = math.MaxUint32

// SlotID identifies a tuple slot within a TablePage's slot directory.
type SlotID uint16

// RID (RecordId) uniquely identifies a tuple slot within a table heap.
type RID struct {
	PageID PageID
	Slot   SlotID
}

// InvalidRID marks synthesized rows produced by operators with no
// backing tuple slot (Values, aggregate outputs, hash-join output).
var InvalidRID = RID{PageID: InvalidPageID, Slot: math.MaxUint16}

// IsValid reports whether r refers to an actual tuple slot.
func (r RID) IsValid() bool { return r != InvalidRID }

// TupleMetadata carries per-slot bookkeeping. Only the deleted bit is
// used today; the field exists so future flags (version, txn id) don't
// require changing every call site that threads metadata through.
type TupleMetadata struct {
	Deleted bool
}
