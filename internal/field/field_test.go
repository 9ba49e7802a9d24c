package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompare_NullSortsFirst(t *testing.T) {
	require.Negative(t, Compare(Null, Integer(0)))
	require.Positive(t, Compare(Integer(0), Null))
	require.Zero(t, Compare(Null, Null))
}

func TestCompare_NaNSortsLast(t *testing.T) {
	nan := Float(nan())
	require.Positive(t, Compare(nan, Float(1e300)))
	require.Zero(t, Compare(nan, nan))
}

func TestEqual_NullAndNaNNeverEqual(t *testing.T) {
	require.False(t, Equal(Null, Null))
	nan := Float(nan())
	require.False(t, Equal(nan, nan))
	require.True(t, Equal(Integer(3), Integer(3)))
}

func TestCheckedAdd_PromotesToFloat(t *testing.T) {
	sum, err := Integer(2).CheckedAdd(Float(1.5))
	require.NoError(t, err)
	require.Equal(t, KindFloat, sum.Kind())
	require.InDelta(t, 3.5, sum.Float64(), 1e-9)
}

func TestCheckedAdd_OverflowErrors(t *testing.T) {
	_, err := Integer(2147483647).CheckedAdd(Integer(1))
	require.Error(t, err)
}

func TestCheckedAdd_TypeMismatch(t *testing.T) {
	_, err := Boolean(true).CheckedAdd(Integer(1))
	require.Error(t, err)
}

func TestCheckedDiv_ByZero(t *testing.T) {
	_, err := Integer(4).CheckedDiv(Integer(0))
	require.Error(t, err)
}

func TestCheckedSub_IntegerStaysInteger(t *testing.T) {
	diff, err := Integer(10).CheckedSub(Integer(3))
	require.NoError(t, err)
	require.Equal(t, KindInteger, diff.Kind())
	require.Equal(t, int32(7), diff.Int())
}

func TestCheckedSub_OverflowErrors(t *testing.T) {
	_, err := Integer(-2147483648).CheckedSub(Integer(1))
	require.Error(t, err)
}

func TestCheckedMul_PromotesToFloat(t *testing.T) {
	prod, err := Integer(2).CheckedMul(Float(1.5))
	require.NoError(t, err)
	require.Equal(t, KindFloat, prod.Kind())
	require.InDelta(t, 3.0, prod.Float64(), 1e-9)
}

func TestCheckedMul_OverflowErrors(t *testing.T) {
	_, err := Integer(2147483647).CheckedMul(Integer(2))
	require.Error(t, err)
}

func TestLike_PercentAndUnderscoreWildcards(t *testing.T) {
	ok, err := String("hello world").Like(String("hello%"))
	require.NoError(t, err)
	require.True(t, ok.Bool())

	ok, err = String("cat").Like(String("c_t"))
	require.NoError(t, err)
	require.True(t, ok.Bool())

	ok, err = String("cot").Like(String("ca%"))
	require.NoError(t, err)
	require.False(t, ok.Bool())
}

func TestLike_TypeMismatch(t *testing.T) {
	_, err := Integer(1).Like(String("1"))
	require.Error(t, err)
}

func TestHashKey_DistinguishesKindAndValue(t *testing.T) {
	require.NotEqual(t, Integer(1).HashKey(), Float(1).HashKey())
	require.Equal(t, Integer(7).HashKey(), Integer(7).HashKey())
}

func nan() float64 {
	var zero float64
	return zero / zero
}
