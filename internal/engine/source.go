package engine

import (
	"github.com/relcore/relcore/internal/catalog"
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// Scan streams all live rows of table in page-chain then slot order,
// applying an optional pushdown predicate at the transaction boundary.
func Scan(txn catalog.Transaction, table string, pushdown Expression) (Rows, error) {
	var pd func(field.Row) bool
	if pushdown != nil {
		pd = func(r field.Row) bool {
			v, err := pushdown.Evaluate(&r)
			return err == nil && v.Kind() == field.KindBoolean && v.Bool()
		}
	}
	entries, err := txn.Scan(table, pd)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{RID: e.RID, Row: e.Row}
	}
	return fromSlice(rows), nil
}

// Values emits the given rows with InvalidRID, for VALUES clauses and
// other synthesized row sets with no backing tuple.
func Values(values []field.Row) Rows {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{RID: storage.InvalidRID, Row: v}
	}
	return fromSlice(rows)
}

// Nothing is the empty stream.
func Nothing() Rows { return fromSlice(nil) }
