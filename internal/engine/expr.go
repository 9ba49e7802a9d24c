package engine

import (
	"github.com/relcore/relcore/internal/dberr"
	"github.com/relcore/relcore/internal/field"
)

// Expression is evaluated against an input row. A nil row is only
// meaningful for constant expressions: ColumnRef fails on a nil row.
type Expression interface {
	Evaluate(row *field.Row) (field.Field, error)
}

// Literal always evaluates to the same Field regardless of input row.
type Literal struct{ Value field.Field }

func (e Literal) Evaluate(*field.Row) (field.Field, error) { return e.Value, nil }

// ColumnRef reads column Index from the input row.
type ColumnRef struct{ Index int }

func (e ColumnRef) Evaluate(row *field.Row) (field.Field, error) {
	if row == nil || e.Index < 0 || e.Index >= row.Width() {
		return field.Field{}, dberr.New(dberr.KindInvalidInput, "expression: column index out of range")
	}
	return row.Get(e.Index), nil
}

// UnaryKind names a unary operator.
type UnaryKind int

const (
	UnaryNot UnaryKind = iota
	UnaryNeg
	UnaryIsNull
)

// UnaryOp applies a single-argument operator to its operand.
type UnaryOp struct {
	Kind    UnaryKind
	Operand Expression
}

func (e UnaryOp) Evaluate(row *field.Row) (field.Field, error) {
	v, err := e.Operand.Evaluate(row)
	if err != nil {
		return field.Field{}, err
	}
	switch e.Kind {
	case UnaryIsNull:
		return field.Boolean(v.IsNull()), nil
	case UnaryNot:
		if v.IsNull() || v.Kind() != field.KindBoolean {
			return field.Null, nil
		}
		return field.Boolean(!v.Bool()), nil
	case UnaryNeg:
		switch v.Kind() {
		case field.KindInteger:
			return field.Integer(-v.Int()), nil
		case field.KindFloat:
			return field.Float(-v.Float64()), nil
		case field.KindNull:
			return field.Null, nil
		default:
			return field.Field{}, dberr.New(dberr.KindTypeMismatch, "expression: cannot negate non-numeric value")
		}
	default:
		return field.Field{}, dberr.New(dberr.KindInternal, "expression: unknown unary kind")
	}
}

// BinaryKind names a binary operator.
type BinaryKind int

const (
	BinaryAdd BinaryKind = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
	BinaryAnd
	BinaryOr
	BinaryLike
)

// BinaryOp applies a two-argument operator to its operands.
type BinaryOp struct {
	Kind        BinaryKind
	Left, Right Expression
}

func (e BinaryOp) Evaluate(row *field.Row) (field.Field, error) {
	l, err := e.Left.Evaluate(row)
	if err != nil {
		return field.Field{}, err
	}
	r, err := e.Right.Evaluate(row)
	if err != nil {
		return field.Field{}, err
	}
	switch e.Kind {
	case BinaryAdd:
		if l.IsNull() || r.IsNull() {
			return field.Null, nil
		}
		return l.CheckedAdd(r)
	case BinarySub:
		if l.IsNull() || r.IsNull() {
			return field.Null, nil
		}
		return l.CheckedSub(r)
	case BinaryMul:
		if l.IsNull() || r.IsNull() {
			return field.Null, nil
		}
		return l.CheckedMul(r)
	case BinaryDiv:
		if l.IsNull() || r.IsNull() {
			return field.Null, nil
		}
		return l.CheckedDiv(r)
	case BinaryEq:
		return field.Boolean(field.Equal(l, r)), nil
	case BinaryNe:
		return field.Boolean(!field.Equal(l, r)), nil
	case BinaryLt:
		if l.IsUndefined() || r.IsUndefined() {
			return field.Null, nil
		}
		return field.Boolean(field.Less(l, r)), nil
	case BinaryLe:
		if l.IsUndefined() || r.IsUndefined() {
			return field.Null, nil
		}
		return field.Boolean(field.Less(l, r) || field.Equal(l, r)), nil
	case BinaryGt:
		if l.IsUndefined() || r.IsUndefined() {
			return field.Null, nil
		}
		return field.Boolean(field.Less(r, l)), nil
	case BinaryGe:
		if l.IsUndefined() || r.IsUndefined() {
			return field.Null, nil
		}
		return field.Boolean(field.Less(r, l) || field.Equal(l, r)), nil
	case BinaryLike:
		if l.IsNull() || r.IsNull() {
			return field.Null, nil
		}
		return l.Like(r)
	case BinaryAnd:
		if l.Kind() == field.KindBoolean && !l.Bool() {
			return field.Boolean(false), nil
		}
		if r.Kind() == field.KindBoolean && !r.Bool() {
			return field.Boolean(false), nil
		}
		if l.IsNull() || r.IsNull() {
			return field.Null, nil
		}
		return field.Boolean(l.Bool() && r.Bool()), nil
	case BinaryOr:
		if l.Kind() == field.KindBoolean && l.Bool() {
			return field.Boolean(true), nil
		}
		if r.Kind() == field.KindBoolean && r.Bool() {
			return field.Boolean(true), nil
		}
		if l.IsNull() || r.IsNull() {
			return field.Null, nil
		}
		return field.Boolean(l.Bool() || r.Bool()), nil
	default:
		return field.Field{}, dberr.New(dberr.KindInternal, "expression: unknown binary kind")
	}
}
