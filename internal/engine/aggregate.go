package engine

import (
	"sort"

	"github.com/relcore/relcore/internal/dberr"
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// AggregateKind names a supported aggregate function.
type AggregateKind int

const (
	AggCount AggregateKind = iota
	AggSum
	AggAverage
	AggMin
	AggMax
)

// AggregateSpec pairs an aggregate function with the expression it
// accumulates.
type AggregateSpec struct {
	Kind AggregateKind
	Expr Expression
}

// accumulator holds the running state for one AggregateSpec within one
// group-by bucket.
type accumulator struct {
	kind    AggregateKind
	count   int32
	hasVal  bool
	current field.Field
}

func newAccumulator(kind AggregateKind) *accumulator {
	return &accumulator{kind: kind}
}

func (a *accumulator) clone() *accumulator {
	c := *a
	return &c
}

// add folds value into the accumulator. NULL inputs are skipped for
// every aggregate kind, including Average and Count — a deliberate
// correction versus an add-unconditionally reading of COUNT/AVG that
// would count NULLs, which disagrees with standard SQL aggregate
// semantics.
func (a *accumulator) add(value field.Field) error {
	if value.IsNull() {
		return nil
	}
	switch a.kind {
	case AggCount:
		a.count++
		return nil
	case AggSum, AggAverage:
		a.count++
		if !a.hasVal {
			a.current = value
			a.hasVal = true
			return nil
		}
		sum, err := a.current.CheckedAdd(value)
		if err != nil {
			return err
		}
		a.current = sum
		return nil
	case AggMin:
		if !a.hasVal || field.Less(value, a.current) {
			a.current = value
			a.hasVal = true
		}
		return nil
	case AggMax:
		if !a.hasVal || field.Less(a.current, value) {
			a.current = value
			a.hasVal = true
		}
		return nil
	default:
		return dberr.New(dberr.KindInternal, "aggregate: unknown accumulator kind")
	}
}

func (a *accumulator) value() (field.Field, error) {
	switch a.kind {
	case AggCount:
		return field.Integer(a.count), nil
	case AggSum:
		if !a.hasVal {
			return field.Null, nil
		}
		return a.current, nil
	case AggAverage:
		if !a.hasVal {
			return field.Null, nil
		}
		return a.current.CheckedDiv(field.Integer(a.count))
	case AggMin, AggMax:
		if !a.hasVal {
			return field.Null, nil
		}
		return a.current, nil
	default:
		return field.Field{}, dberr.New(dberr.KindInternal, "aggregate: unknown accumulator kind")
	}
}

// Aggregate buckets input rows by the group_by expressions, folding
// each aggregate expression's value into its accumulator, and emits
// group_key ⧺ aggregate_values rows in ascending bucket-key order. If
// there are no input rows and no group-by expressions, emits one
// synthetic row of initial accumulator values (e.g. COUNT(*) -> 0).
func Aggregate(source Rows, groupBy []Expression, aggregates []AggregateSpec) (Rows, error) {
	type bucket struct {
		key  []field.Field
		accs []*accumulator
	}
	buckets := make(map[string]*bucket)
	var order []string

	template := make([]*accumulator, len(aggregates))
	for i, spec := range aggregates {
		template[i] = newAccumulator(spec.Kind)
	}

	anyRows := false
	for {
		row, ok, err := source.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		anyRows = true

		key := make([]field.Field, len(groupBy))
		for i, e := range groupBy {
			v, err := e.Evaluate(&row.Row)
			if err != nil {
				return nil, err
			}
			key[i] = v
		}
		bk := bucketKey(key)
		b, ok := buckets[bk]
		if !ok {
			accs := make([]*accumulator, len(template))
			for i, t := range template {
				accs[i] = t.clone()
			}
			b = &bucket{key: key, accs: accs}
			buckets[bk] = b
			order = append(order, bk)
		}
		for i, spec := range aggregates {
			v, err := spec.Expr.Evaluate(&row.Row)
			if err != nil {
				return nil, err
			}
			if err := b.accs[i].add(v); err != nil {
				return nil, err
			}
		}
	}

	if !anyRows && len(groupBy) == 0 {
		out := make([]field.Field, len(template))
		for i, t := range template {
			v, err := t.value()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return fromSlice([]Row{{RID: storage.InvalidRID, Row: field.NewRow(out)}}), nil
	}

	sort.Slice(order, func(i, j int) bool {
		return bucketLess(buckets[order[i]].key, buckets[order[j]].key)
	})

	rows := make([]Row, len(order))
	for i, bk := range order {
		b := buckets[bk]
		out := make([]field.Field, 0, len(b.key)+len(b.accs))
		out = append(out, b.key...)
		for _, acc := range b.accs {
			v, err := acc.value()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		rows[i] = Row{RID: storage.InvalidRID, Row: field.NewRow(out)}
	}
	return fromSlice(rows), nil
}

func bucketKey(fields []field.Field) string {
	s := ""
	for _, f := range fields {
		s += f.HashKey() + "\x1f"
	}
	return s
}

func bucketLess(a, b []field.Field) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		c := field.Compare(a[i], b[i])
		if c != 0 {
			return c < 0
		}
	}
	return len(a) < len(b)
}
