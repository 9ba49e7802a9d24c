package engine

import (
	"github.com/relcore/relcore/internal/catalog"
	"github.com/relcore/relcore/internal/dberr"
	"github.com/relcore/relcore/internal/field"
)

// Execute recursively interprets node against txn, returning its lazy
// row stream. Tuples flow upward from leaves (Scan, Values, Nothing)
// to the node passed in.
func Execute(node Node, txn catalog.Transaction) (Rows, error) {
	switch n := node.(type) {
	case *ScanNode:
		return Scan(txn, n.Table, n.Filter)

	case *ValuesNode:
		return Values(n.Rows), nil

	case *NothingNode:
		return Nothing(), nil

	case *FilterNode:
		source, err := Execute(n.Source, txn)
		if err != nil {
			return nil, err
		}
		return Filter(source, n.Predicate), nil

	case *ProjectNode:
		source, err := Execute(n.Source, txn)
		if err != nil {
			return nil, err
		}
		return Project(source, n.Expressions), nil

	case *RemapNode:
		source, err := Execute(n.Source, txn)
		if err != nil {
			return nil, err
		}
		return Remap(source, n.Targets), nil

	case *LimitNode:
		source, err := Execute(n.Source, txn)
		if err != nil {
			return nil, err
		}
		return Limit(source, n.Limit), nil

	case *OffsetNode:
		source, err := Execute(n.Source, txn)
		if err != nil {
			return nil, err
		}
		return Offset(source, n.Offset), nil

	case *OrderNode:
		source, err := Execute(n.Source, txn)
		if err != nil {
			return nil, err
		}
		return Order(source, n.Keys)

	case *NestedLoopJoinNode:
		left, err := Execute(n.Left, txn)
		if err != nil {
			return nil, err
		}
		right, err := Execute(n.Right, txn)
		if err != nil {
			return nil, err
		}
		return NestedLoopJoin(left, right, n.Right.Columns(), n.Predicate, n.Outer)

	case *HashJoinNode:
		left, err := Execute(n.Left, txn)
		if err != nil {
			return nil, err
		}
		right, err := Execute(n.Right, txn)
		if err != nil {
			return nil, err
		}
		return HashJoin(left, n.LeftColumn, right, n.RightColumn, n.Right.Columns(), n.Outer)

	case *AggregateNode:
		source, err := Execute(n.Source, txn)
		if err != nil {
			return nil, err
		}
		return Aggregate(source, n.GroupBy, n.Aggregates)

	case *IndexLookupNode, *KeyLookupNode:
		return nil, dberr.New(dberr.KindInvalidInput, "execute: index/key lookup is not implemented")

	default:
		return nil, dberr.New(dberr.KindInternal, "execute: unknown plan node type")
	}
}

// ExecutePlan executes the root of a planned statement against catalog
// and txn, taking both to keep schema operations (via catalog) separate
// from reading and writing rows (via txn).
func ExecutePlan(plan Plan, cat catalog.Catalog, txn catalog.Transaction) (ExecutionResult, error) {
	switch p := plan.(type) {
	case CreateTablePlan:
		if err := cat.CreateTable(p.Schema); err != nil {
			return ExecutionResult{}, err
		}
		return ExecutionResult{Kind: ResultCreateTable, TableName: p.Schema.Name}, nil

	case DropTablePlan:
		existed, err := cat.DropTable(p.Table, p.IfExists)
		if err != nil {
			return ExecutionResult{}, err
		}
		return ExecutionResult{Kind: ResultDropTable, TableName: p.Table, Existed: existed}, nil

	case InsertPlan:
		source, err := Execute(p.Source, txn)
		if err != nil {
			return ExecutionResult{}, err
		}
		rids, err := InsertRows(txn, p.Table, source)
		if err != nil {
			return ExecutionResult{}, err
		}
		return ExecutionResult{Kind: ResultInsert, Count: int64(len(rids)), RecordIDs: rids}, nil

	case DeletePlan:
		source, err := Execute(p.Source, txn)
		if err != nil {
			return ExecutionResult{}, err
		}
		count, err := DeleteRows(txn, p.Table, source)
		if err != nil {
			return ExecutionResult{}, err
		}
		return ExecutionResult{Kind: ResultDelete, Count: count}, nil

	case UpdatePlan:
		source, err := Execute(p.Source, txn)
		if err != nil {
			return ExecutionResult{}, err
		}
		count, err := UpdateRows(txn, p.Table, source, p.Expressions)
		if err != nil {
			return ExecutionResult{}, err
		}
		return ExecutionResult{Kind: ResultUpdate, Count: count}, nil

	case SelectPlan:
		rows, err := Execute(p.Root, txn)
		if err != nil {
			return ExecutionResult{}, err
		}
		labels := make([]field.Label, p.Root.Columns())
		for i := range labels {
			labels[i] = p.Root.ColumnLabel(i)
		}
		return ExecutionResult{Kind: ResultSelect, SelectRows: rows, SelectLabels: labels}, nil

	default:
		return ExecutionResult{}, dberr.New(dberr.KindInternal, "execute: unknown plan type")
	}
}
