package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/field"
)

func intRows(vals ...int32) Rows {
	rows := make([]field.Row, len(vals))
	for i, v := range vals {
		rows[i] = field.NewRow([]field.Field{field.Integer(v)})
	}
	return Values(rows)
}

func TestFilter_KeepsMatchingRows(t *testing.T) {
	source := intRows(1, 2, 3, 4)
	pred := BinaryOp{Kind: BinaryGt, Left: ColumnRef{Index: 0}, Right: Literal{Value: field.Integer(2)}}
	out, err := drain(Filter(source, pred))
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int32(3), out[0].Row.Get(0).Int())
}

func TestProject_EvaluatesEachExpression(t *testing.T) {
	source := intRows(5)
	proj := Project(source, []Expression{
		ColumnRef{Index: 0},
		BinaryOp{Kind: BinaryAdd, Left: ColumnRef{Index: 0}, Right: Literal{Value: field.Integer(1)}},
	})
	out, err := drain(proj)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, int32(5), out[0].Row.Get(0).Int())
	require.Equal(t, int32(6), out[0].Row.Get(1).Int())
}

func TestLimitOffset(t *testing.T) {
	source := intRows(1, 2, 3, 4, 5)
	out, err := drain(Limit(Offset(source, 1), 2))
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int32(2), out[0].Row.Get(0).Int())
	require.Equal(t, int32(3), out[1].Row.Get(0).Int())
}

func TestOrder_SortsAscendingByDefault(t *testing.T) {
	source := intRows(3, 1, 2)
	ordered, err := Order(source, []OrderKey{{Expr: ColumnRef{Index: 0}}})
	require.NoError(t, err)
	out, err := drain(ordered)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, []int32{out[0].Row.Get(0).Int(), out[1].Row.Get(0).Int(), out[2].Row.Get(0).Int()})
}

func TestOrder_Descending(t *testing.T) {
	source := intRows(3, 1, 2)
	ordered, err := Order(source, []OrderKey{{Expr: ColumnRef{Index: 0}, Descending: true}})
	require.NoError(t, err)
	out, err := drain(ordered)
	require.NoError(t, err)
	require.Equal(t, []int32{3, 2, 1}, []int32{out[0].Row.Get(0).Int(), out[1].Row.Get(0).Int(), out[2].Row.Get(0).Int()})
}

func TestRemap_WidensAndReindexes(t *testing.T) {
	source := intRows(7)
	// input column 0 moves to output position 1; position 0 stays Null.
	idx1 := 1
	remapped := Remap(source, []*int{&idx1})
	out, err := drain(remapped)
	require.NoError(t, err)
	require.Equal(t, 2, out[0].Row.Width())
	require.True(t, out[0].Row.Get(0).IsNull())
	require.Equal(t, int32(7), out[0].Row.Get(1).Int())
}
