package engine

import (
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// NestedLoopJoin iterates a restartable right stream from the start for
// every left row, emitting (left_rid, left ⧺ right) where predicate
// holds (or is absent). If outer and no right row matched, emits
// left ⧺ Nulls. Computes the full cross product — unlike a
// break-on-first-match shortcut, which would silently drop later
// matches for outer-joined rows that already matched once.
func NestedLoopJoin(left, right Rows, rightWidth int, predicate Expression, outer bool) (Rows, error) {
	rightRows, err := drain(right)
	if err != nil {
		return nil, err
	}

	leftPos := 0
	rightPos := 0
	matchedAny := false
	var pendingLeft *Row

	return rowsFunc(func() (Row, bool, error) {
		for {
			if pendingLeft == nil {
				row, ok, err := left.Next()
				if err != nil || !ok {
					return Row{}, ok, err
				}
				pendingLeft = &row
				rightPos = 0
				matchedAny = false
			}

			for rightPos < len(rightRows) {
				r := rightRows[rightPos]
				rightPos++
				combined := pendingLeft.Row.Concat(r.Row)
				if predicate != nil {
					v, err := predicate.Evaluate(&combined)
					if err != nil {
						return Row{}, false, err
					}
					if v.Kind() != field.KindBoolean || !v.Bool() {
						continue
					}
				}
				matchedAny = true
				out := Row{RID: pendingLeft.RID, Row: combined}
				if rightPos >= len(rightRows) {
					pendingLeft = nil
				}
				return out, true, nil
			}

			// Exhausted right for this left row.
			if !matchedAny && outer {
				nulls := make([]field.Field, rightWidth)
				for i := range nulls {
					nulls[i] = field.Null
				}
				out := Row{RID: pendingLeft.RID, Row: pendingLeft.Row.Concat(field.NewRow(nulls))}
				pendingLeft = nil
				return out, true, nil
			}
			pendingLeft = nil
			leftPos++
		}
	}), nil
}

// HashJoin builds a table of right rows keyed on right_col (skipping
// undefined keys, since null/NaN equality is always false), then
// probes with the left stream, emitting the Cartesian product of
// matches, or left ⧺ Nulls for unmatched rows when outer. Build-phase
// key evaluation runs concurrently across the drained right rows,
// since each row's key is independent of every other's.
func HashJoin(left Rows, leftCol int, right Rows, rightCol int, rightWidth int, outer bool) (Rows, error) {
	rightRows, err := drain(right)
	if err != nil {
		return nil, err
	}

	type keyed struct {
		key field.Field
		row Row
		ok  bool
	}
	keys := make([]keyed, len(rightRows))
	wp := pool.New().WithMaxGoroutines(16)
	var mu sync.Mutex
	for i, r := range rightRows {
		i, r := i, r
		wp.Go(func() {
			if rightCol >= r.Row.Width() {
				return
			}
			k := r.Row.Get(rightCol)
			if k.IsUndefined() {
				return
			}
			mu.Lock()
			keys[i] = keyed{key: k, row: r, ok: true}
			mu.Unlock()
		})
	}
	wp.Wait()

	buckets := make(map[string][]Row)
	for _, k := range keys {
		if !k.ok {
			continue
		}
		bk := k.key.HashKey()
		buckets[bk] = append(buckets[bk], k.row)
	}

	var pending []Row
	pendingIdx := 0

	return rowsFunc(func() (Row, bool, error) {
		for {
			if pendingIdx < len(pending) {
				out := pending[pendingIdx]
				pendingIdx++
				return out, true, nil
			}
			row, ok, err := left.Next()
			if err != nil || !ok {
				return Row{}, ok, err
			}
			if leftCol >= row.Row.Width() {
				continue
			}
			lk := row.Row.Get(leftCol)
			if lk.IsUndefined() {
				if outer {
					return outerRow(row, rightWidth), true, nil
				}
				continue
			}
			matches, found := buckets[lk.HashKey()]
			if !found {
				if outer {
					return outerRow(row, rightWidth), true, nil
				}
				continue
			}
			pending = make([]Row, len(matches))
			for i, m := range matches {
				pending[i] = Row{RID: storage.InvalidRID, Row: row.Row.Concat(m.Row)}
			}
			pendingIdx = 0
		}
	}), nil
}

func outerRow(row Row, rightWidth int) Row {
	nulls := make([]field.Field, rightWidth)
	for i := range nulls {
		nulls[i] = field.Null
	}
	return Row{RID: storage.InvalidRID, Row: row.Row.Concat(field.NewRow(nulls))}
}
