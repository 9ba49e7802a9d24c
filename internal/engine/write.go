package engine

import (
	"github.com/relcore/relcore/internal/catalog"
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// DeleteRows drains source and tombstones every row's rid in table,
// returning the number of rows deleted.
func DeleteRows(txn catalog.Transaction, table string, source Rows) (int64, error) {
	rows, err := drain(source)
	if err != nil {
		return 0, err
	}
	rids := make([]storage.RID, len(rows))
	for i, r := range rows {
		rids[i] = r.RID
	}
	if err := txn.Delete(table, rids); err != nil {
		return 0, err
	}
	return int64(len(rids)), nil
}

// InsertRows drains source and inserts every row into table, returning
// the record ids assigned.
func InsertRows(txn catalog.Transaction, table string, source Rows) ([]storage.RID, error) {
	rows, err := drain(source)
	if err != nil {
		return nil, err
	}
	values := make([]field.Row, len(rows))
	for i, r := range rows {
		values[i] = r.Row
	}
	return txn.Insert(table, values)
}

// ColumnUpdate pairs a column index with the expression that computes
// its new value.
type ColumnUpdate struct {
	Column int
	Expr   Expression
}

// UpdateRows drains source, computes each row's new values by
// evaluating expressions against the row's ORIGINAL (unmodified)
// fields — not progressively updated ones, so `SET a = b, b = a` swaps
// rather than clobbers — coalesces duplicate rids keeping the last
// write, and applies the result. Returns the number of distinct rows
// updated.
func UpdateRows(txn catalog.Transaction, table string, source Rows, expressions []ColumnUpdate) (int64, error) {
	rows, err := drain(source)
	if err != nil {
		return 0, err
	}

	updates := make(map[storage.RID]field.Row)
	for _, r := range rows {
		original := r.Row
		newRow := r.Row.Clone()
		for _, cu := range expressions {
			v, err := cu.Expr.Evaluate(&original)
			if err != nil {
				return 0, err
			}
			newRow.Set(cu.Column, v)
		}
		updates[r.RID] = newRow
	}

	if err := txn.Update(table, updates); err != nil {
		return 0, err
	}
	return int64(len(updates)), nil
}
