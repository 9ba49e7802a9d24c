package engine

import (
	"sort"

	"github.com/relcore/relcore/internal/field"
)

// Filter lazily emits rows where predicate evaluates to Boolean(true).
// Non-boolean and null results drop the row; errors propagate.
func Filter(source Rows, predicate Expression) Rows {
	return rowsFunc(func() (Row, bool, error) {
		for {
			row, ok, err := source.Next()
			if err != nil || !ok {
				return Row{}, ok, err
			}
			v, err := predicate.Evaluate(&row.Row)
			if err != nil {
				return Row{}, false, err
			}
			if v.Kind() == field.KindBoolean && v.Bool() {
				return row, true, nil
			}
		}
	})
}

// Project lazily replaces each row with the result of evaluating
// expressions against it.
func Project(source Rows, expressions []Expression) Rows {
	return rowsFunc(func() (Row, bool, error) {
		row, ok, err := source.Next()
		if err != nil || !ok {
			return Row{}, ok, err
		}
		out := make([]field.Field, len(expressions))
		for i, e := range expressions {
			v, err := e.Evaluate(&row.Row)
			if err != nil {
				return Row{}, false, err
			}
			out[i] = v
		}
		return Row{RID: row.RID, Row: field.NewRow(out)}, true, nil
	})
}

// Remap lazily relocates input column i to output position targets[i]
// (if set), leaving unfilled positions Null. Output width is
// max(targets)+1, or 0 if every target is unset.
func Remap(source Rows, targets []*int) Rows {
	size := 0
	for _, t := range targets {
		if t != nil && *t+1 > size {
			size = *t + 1
		}
	}
	return rowsFunc(func() (Row, bool, error) {
		row, ok, err := source.Next()
		if err != nil || !ok {
			return Row{}, ok, err
		}
		out := make([]field.Field, size)
		for i := range out {
			out[i] = field.Null
		}
		for i := 0; i < row.Row.Width() && i < len(targets); i++ {
			if t := targets[i]; t != nil {
				out[*t] = row.Row.Get(i)
			}
		}
		return Row{RID: row.RID, Row: field.NewRow(out)}, true, nil
	})
}

// Limit lazily emits at most n rows.
func Limit(source Rows, n int) Rows {
	emitted := 0
	return rowsFunc(func() (Row, bool, error) {
		if emitted >= n {
			return Row{}, false, nil
		}
		row, ok, err := source.Next()
		if err != nil || !ok {
			return Row{}, ok, err
		}
		emitted++
		return row, true, nil
	})
}

// Offset lazily skips the first k rows.
func Offset(source Rows, k int) Rows {
	skipped := false
	return rowsFunc(func() (Row, bool, error) {
		if !skipped {
			for i := 0; i < k; i++ {
				if _, ok, err := source.Next(); err != nil {
					return Row{}, false, err
				} else if !ok {
					break
				}
			}
			skipped = true
		}
		return source.Next()
	})
}

// OrderKey is one ORDER BY term.
type OrderKey struct {
	Expr       Expression
	Descending bool
}

// Order eagerly consumes source, precomputing each row's sort-key
// values up front (expression evaluation is fallible, and
// re-evaluating during comparison would both repeat work and risk a
// mid-sort error), then stable-sorts by lexicographic key comparison
// under the Field total order, reversing per-key for Descending.
func Order(source Rows, keys []OrderKey) (Rows, error) {
	rows, err := drain(source)
	if err != nil {
		return nil, err
	}
	sortValues := make([][]field.Field, len(rows))
	for i, r := range rows {
		values := make([]field.Field, len(keys))
		for j, k := range keys {
			v, err := k.Expr.Evaluate(&r.Row)
			if err != nil {
				return nil, err
			}
			values[j] = v
		}
		sortValues[i] = values
	}

	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ia, ib := indices[a], indices[b]
		for k := range keys {
			c := field.Compare(sortValues[ia][k], sortValues[ib][k])
			if c == 0 {
				continue
			}
			if keys[k].Descending {
				c = -c
			}
			return c < 0
		}
		return false
	})

	out := make([]Row, len(rows))
	for i, idx := range indices {
		out[i] = rows[idx]
	}
	return fromSlice(out), nil
}
