package engine

import (
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// Row is one unit of a row stream: a record id (storage.InvalidRID for
// synthesized rows) paired with its fields.
type Row struct {
	RID storage.RID
	Row field.Row
}

// Rows is a single-pass, pull-based row stream. Operators that need
// multiple passes over their input (Order, HashJoin's build phase,
// Aggregate, NestedLoopJoin's right side) materialize internally and
// hand back a Rows that replays the materialized result.
type Rows interface {
	// Next returns the next row, or ok=false once the stream is
	// exhausted. An error aborts the stream.
	Next() (Row, bool, error)
}

// rowsFunc adapts a plain closure to Rows.
type rowsFunc func() (Row, bool, error)

func (f rowsFunc) Next() (Row, bool, error) { return f() }

// sliceRows replays a materialized slice of rows lazily, one per call.
type sliceRows struct {
	rows []Row
	pos  int
}

func fromSlice(rows []Row) Rows { return &sliceRows{rows: rows} }

func (s *sliceRows) Next() (Row, bool, error) {
	if s.pos >= len(s.rows) {
		return Row{}, false, nil
	}
	r := s.rows[s.pos]
	s.pos++
	return r, true, nil
}

// drain pulls every row out of source into a slice.
func drain(source Rows) ([]Row, error) {
	var out []Row
	for {
		row, ok, err := source.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, row)
	}
}
