package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/field"
)

func TestColumnRef_Evaluate(t *testing.T) {
	row := field.NewRow([]field.Field{field.Integer(3), field.String("x")})
	v, err := (ColumnRef{Index: 1}).Evaluate(&row)
	require.NoError(t, err)
	require.Equal(t, "x", v.Str())
}

func TestColumnRef_OutOfRange(t *testing.T) {
	row := field.NewRow([]field.Field{field.Integer(3)})
	_, err := (ColumnRef{Index: 5}).Evaluate(&row)
	require.Error(t, err)
}

func TestBinaryOp_AndShortCircuitsOnFalse(t *testing.T) {
	// false AND NULL is false: a false operand decides the result even
	// though the other operand is NULL.
	row := field.NewRow([]field.Field{field.Boolean(false)})
	op := BinaryOp{
		Kind:  BinaryAnd,
		Left:  ColumnRef{Index: 0},
		Right: Literal{Value: field.Null},
	}
	v, err := op.Evaluate(&row)
	require.NoError(t, err)
	require.False(t, v.Bool())
}

func TestBinaryOp_EqNullNeverEqual(t *testing.T) {
	row := field.NewRow([]field.Field{field.Null})
	op := BinaryOp{Kind: BinaryEq, Left: ColumnRef{Index: 0}, Right: Literal{Value: field.Null}}
	v, err := op.Evaluate(&row)
	require.NoError(t, err)
	require.False(t, v.Bool())
}

func TestBinaryOp_SubAndMul(t *testing.T) {
	row := field.NewRow([]field.Field{field.Integer(10), field.Integer(3)})
	sub, err := (BinaryOp{Kind: BinarySub, Left: ColumnRef{Index: 0}, Right: ColumnRef{Index: 1}}).Evaluate(&row)
	require.NoError(t, err)
	require.Equal(t, int32(7), sub.Int())

	mul, err := (BinaryOp{Kind: BinaryMul, Left: ColumnRef{Index: 0}, Right: ColumnRef{Index: 1}}).Evaluate(&row)
	require.NoError(t, err)
	require.Equal(t, int32(30), mul.Int())
}

func TestBinaryOp_Ne(t *testing.T) {
	row := field.NewRow([]field.Field{field.Integer(1), field.Integer(2)})
	v, err := (BinaryOp{Kind: BinaryNe, Left: ColumnRef{Index: 0}, Right: ColumnRef{Index: 1}}).Evaluate(&row)
	require.NoError(t, err)
	require.True(t, v.Bool())

	// NULL is never equal, so Ne on NULL is also true (negated Equal).
	nullRow := field.NewRow([]field.Field{field.Null, field.Integer(2)})
	v, err = (BinaryOp{Kind: BinaryNe, Left: ColumnRef{Index: 0}, Right: ColumnRef{Index: 1}}).Evaluate(&nullRow)
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestBinaryOp_LeAndGeIncludeEqual(t *testing.T) {
	row := field.NewRow([]field.Field{field.Integer(2), field.Integer(2)})
	le, err := (BinaryOp{Kind: BinaryLe, Left: ColumnRef{Index: 0}, Right: ColumnRef{Index: 1}}).Evaluate(&row)
	require.NoError(t, err)
	require.True(t, le.Bool())

	ge, err := (BinaryOp{Kind: BinaryGe, Left: ColumnRef{Index: 0}, Right: ColumnRef{Index: 1}}).Evaluate(&row)
	require.NoError(t, err)
	require.True(t, ge.Bool())
}

func TestBinaryOp_Like(t *testing.T) {
	row := field.NewRow([]field.Field{field.String("hello world")})
	match, err := (BinaryOp{Kind: BinaryLike, Left: ColumnRef{Index: 0}, Right: Literal{Value: field.String("hello%")}}).Evaluate(&row)
	require.NoError(t, err)
	require.True(t, match.Bool())

	noMatch, err := (BinaryOp{Kind: BinaryLike, Left: ColumnRef{Index: 0}, Right: Literal{Value: field.String("bye%")}}).Evaluate(&row)
	require.NoError(t, err)
	require.False(t, noMatch.Bool())

	single, err := (BinaryOp{Kind: BinaryLike, Left: Literal{Value: field.String("cat")}, Right: Literal{Value: field.String("c_t")}}).Evaluate(&row)
	require.NoError(t, err)
	require.True(t, single.Bool())
}

func TestUnaryOp_IsNull(t *testing.T) {
	row := field.NewRow([]field.Field{field.Null})
	v, err := (UnaryOp{Kind: UnaryIsNull, Operand: ColumnRef{Index: 0}}).Evaluate(&row)
	require.NoError(t, err)
	require.True(t, v.Bool())
}
