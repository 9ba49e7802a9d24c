// Package field implements the tagged value type rows are built from:
// total ordering (nulls and NaN sort consistently) and checked arithmetic.
package field

import (
	"fmt"
	"math"

	"github.com/relcore/relcore/internal/dberr"
)

// Kind tags which variant a Field holds.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBoolean:
		return "BOOLEAN"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Field is a tagged value: Null | Boolean | Integer(i32) | Float(f64) | String.
type Field struct {
	kind Kind
	b    bool
	i    int32
	f    float64
	s    string
}

// Null is the singleton null Field.
var Null = Field{kind: KindNull}

func Boolean(b bool) Field   { return Field{kind: KindBoolean, b: b} }
func Integer(i int32) Field  { return Field{kind: KindInteger, i: i} }
func Float(f float64) Field  { return Field{kind: KindFloat, f: f} }
func String(s string) Field  { return Field{kind: KindString, s: s} }

func (f Field) Kind() Kind { return f.kind }
func (f Field) IsNull() bool { return f.kind == KindNull }

func (f Field) Bool() bool      { return f.b }
func (f Field) Int() int32      { return f.i }
func (f Field) Float64() float64 { return f.f }
func (f Field) Str() string     { return f.s }

// IsNaN reports whether f is a float NaN.
func (f Field) IsNaN() bool {
	return f.kind == KindFloat && math.IsNaN(f.f)
}

// IsUndefined reports whether f can never compare equal to anything,
// including itself — true for NULL and NaN. Used by joins to skip keys.
func (f Field) IsUndefined() bool {
	return f.IsNull() || f.IsNaN()
}

func (f Field) String() string {
	switch f.kind {
	case KindNull:
		return "NULL"
	case KindBoolean:
		if f.b {
			return "true"
		}
		return "false"
	case KindInteger:
		return fmt.Sprintf("%d", f.i)
	case KindFloat:
		return fmt.Sprintf("%v", f.f)
	case KindString:
		return f.s
	default:
		return "?"
	}
}

// HashKey returns a string uniquely identifying f's (kind, value) for
// use as a Go map key, e.g. in hash-join build tables. Undefined
// values (NULL, NaN) have no stable equality and should be filtered
// out by the caller before use.
func (f Field) HashKey() string {
	switch f.kind {
	case KindBoolean:
		return "b:" + f.String()
	case KindInteger:
		return "i:" + f.String()
	case KindFloat:
		return "f:" + f.String()
	case KindString:
		return "s:" + f.s
	default:
		return "n:"
	}
}

// rank orders Fields by kind when comparing across different kinds:
// Null sorts first, then Boolean, Integer, Float, String.
func (k Kind) rank() int { return int(k) }

// Compare returns -1, 0, or 1 following a total order: NULL sorts before
// every other value (and equals only itself); within a kind, natural
// ordering applies, with NaN defined as sorting after every other float
// (including +Inf) and equal only to itself... except Compare must still
// return a definite order, so NaN is treated as the largest float value
// for ordering purposes, consistent with "NaN is undefined" only for
// equality, not for total ordering (Order must still produce a total order).
func Compare(a, b Field) int {
	if a.kind != b.kind {
		return compareInt(a.kind.rank(), b.kind.rank())
	}
	switch a.kind {
	case KindNull:
		return 0
	case KindBoolean:
		return compareBool(a.b, b.b)
	case KindInteger:
		return compareInt(int(a.i), int(b.i))
	case KindFloat:
		return compareFloat(a.f, b.f)
	case KindString:
		if a.s < b.s {
			return -1
		} else if a.s > b.s {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

// compareFloat defines a total order over float64 including NaN: NaN
// sorts after every other value (consistent) and equals itself.
func compareFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports value equality. NULL and NaN never compare equal to
// anything, including another NULL/NaN (SQL three-valued-logic style),
// even though Compare/Order define a total order that places them
// consistently for sorting purposes.
func Equal(a, b Field) bool {
	if a.IsUndefined() || b.IsUndefined() {
		return false
	}
	return Compare(a, b) == 0
}

// Less reports whether a sorts strictly before b under the total order
// used by ORDER BY and aggregate bucket keys (NULL first, NaN last).
func Less(a, b Field) bool { return Compare(a, b) < 0 }

func typeMismatch(op string, a, b Field) error {
	return dberr.New(dberr.KindTypeMismatch, fmt.Sprintf("%s: incompatible types %s and %s", op, a.kind, b.kind))
}

// CheckedAdd adds two Fields, promoting Integer+Float to Float, and
// failing on type mismatch or signed 32-bit overflow.
func (f Field) CheckedAdd(other Field) (Field, error) {
	switch {
	case f.kind == KindInteger && other.kind == KindInteger:
		sum := int64(f.i) + int64(other.i)
		if sum > math.MaxInt32 || sum < math.MinInt32 {
			return Field{}, dberr.New(dberr.KindTypeMismatch, "integer overflow in addition")
		}
		return Integer(int32(sum)), nil
	case isNumeric(f) && isNumeric(other):
		return Float(asFloat(f) + asFloat(other)), nil
	default:
		return Field{}, typeMismatch("add", f, other)
	}
}

// CheckedSub subtracts two Fields, promoting Integer-Float to Float, and
// failing on type mismatch or signed 32-bit overflow.
func (f Field) CheckedSub(other Field) (Field, error) {
	switch {
	case f.kind == KindInteger && other.kind == KindInteger:
		diff := int64(f.i) - int64(other.i)
		if diff > math.MaxInt32 || diff < math.MinInt32 {
			return Field{}, dberr.New(dberr.KindTypeMismatch, "integer overflow in subtraction")
		}
		return Integer(int32(diff)), nil
	case isNumeric(f) && isNumeric(other):
		return Float(asFloat(f) - asFloat(other)), nil
	default:
		return Field{}, typeMismatch("sub", f, other)
	}
}

// CheckedMul multiplies two Fields, promoting Integer*Float to Float, and
// failing on type mismatch or signed 32-bit overflow.
func (f Field) CheckedMul(other Field) (Field, error) {
	switch {
	case f.kind == KindInteger && other.kind == KindInteger:
		prod := int64(f.i) * int64(other.i)
		if prod > math.MaxInt32 || prod < math.MinInt32 {
			return Field{}, dberr.New(dberr.KindTypeMismatch, "integer overflow in multiplication")
		}
		return Integer(int32(prod)), nil
	case isNumeric(f) && isNumeric(other):
		return Float(asFloat(f) * asFloat(other)), nil
	default:
		return Field{}, typeMismatch("mul", f, other)
	}
}

// CheckedDiv divides two Fields, failing on type mismatch or on
// division by zero (integer or float).
func (f Field) CheckedDiv(other Field) (Field, error) {
	switch {
	case f.kind == KindInteger && other.kind == KindInteger:
		if other.i == 0 {
			return Field{}, dberr.New(dberr.KindTypeMismatch, "division by zero")
		}
		return Integer(f.i / other.i), nil
	case isNumeric(f) && isNumeric(other):
		denom := asFloat(other)
		if denom == 0 {
			return Field{}, dberr.New(dberr.KindTypeMismatch, "division by zero")
		}
		return Float(asFloat(f) / denom), nil
	default:
		return Field{}, typeMismatch("div", f, other)
	}
}

// Like reports whether f matches a SQL LIKE pattern, where % matches
// any run of characters (including none) and _ matches exactly one.
// Both operands must be KindString.
func (f Field) Like(pattern Field) (Field, error) {
	if f.kind != KindString || pattern.kind != KindString {
		return Field{}, typeMismatch("like", f, pattern)
	}
	return Boolean(likeMatch(f.s, pattern.s)), nil
}

func likeMatch(s, p string) bool {
	if p == "" {
		return s == ""
	}
	if p[0] == '%' {
		if likeMatch(s, p[1:]) {
			return true
		}
		return s != "" && likeMatch(s[1:], p)
	}
	if s == "" {
		return false
	}
	if p[0] == '_' || p[0] == s[0] {
		return likeMatch(s[1:], p[1:])
	}
	return false
}

func isNumeric(f Field) bool { return f.kind == KindInteger || f.kind == KindFloat }

func asFloat(f Field) float64 {
	if f.kind == KindInteger {
		return float64(f.i)
	}
	return f.f
}
