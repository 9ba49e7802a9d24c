package field

import (
	"encoding/binary"
	"math"

	"github.com/relcore/relcore/internal/dberr"
)

// Encode serializes a Row to bytes: a leading null-bitmap (1 bit per
// field, set means NULL) followed by each non-null field's payload —
// fixed 1-byte tag + kind-specific bytes, with text u16-length-prefixed
// (the same varlen encoding the teacher's row codec uses). Grounded on
// the teacher's null-bitmap-plus-fixed-width row codec, generalized
// from a schema-typed []any to a self-describing Field per value, since
// the execution engine here has no catalog-typed columns for
// synthesized rows (Values, aggregate outputs).
func Encode(row Row) ([]byte, error) {
	n := row.Width()
	nullBytes := (n + 7) / 8
	out := make([]byte, nullBytes)
	for i, f := range row.fields {
		if f.kind == KindNull {
			out[i/8] |= 1 << uint(i%8)
			continue
		}
		out = append(out, byte(f.kind))
		switch f.kind {
		case KindBoolean:
			if f.b {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		case KindInteger:
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(f.i))
			out = append(out, b[:]...)
		case KindFloat:
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(f.f))
			out = append(out, b[:]...)
		case KindString:
			if len(f.s) > math.MaxUint16 {
				return nil, dberr.New(dberr.KindInvalidInput, "row codec: string exceeds u16 length")
			}
			var l [2]byte
			binary.LittleEndian.PutUint16(l[:], uint16(len(f.s)))
			out = append(out, l[:]...)
			out = append(out, f.s...)
		}
	}
	return out, nil
}

// Decode parses width fields from buf, the inverse of Encode.
func Decode(buf []byte, width int) (Row, error) {
	nullBytes := (width + 7) / 8
	if len(buf) < nullBytes {
		return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: buffer too short for null bitmap")
	}
	fields := make([]Field, width)
	cur := nullBytes
	for i := 0; i < width; i++ {
		if buf[i/8]&(1<<uint(i%8)) != 0 {
			fields[i] = Null
			continue
		}
		if cur >= len(buf) {
			return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: truncated buffer")
		}
		kind := Kind(buf[cur])
		cur++
		switch kind {
		case KindBoolean:
			if cur >= len(buf) {
				return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: truncated bool")
			}
			fields[i] = Boolean(buf[cur] != 0)
			cur++
		case KindInteger:
			if cur+4 > len(buf) {
				return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: truncated int")
			}
			fields[i] = Integer(int32(binary.LittleEndian.Uint32(buf[cur : cur+4])))
			cur += 4
		case KindFloat:
			if cur+8 > len(buf) {
				return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: truncated float")
			}
			bits := binary.LittleEndian.Uint64(buf[cur : cur+8])
			fields[i] = Float(math.Float64frombits(bits))
			cur += 8
		case KindString:
			if cur+2 > len(buf) {
				return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: truncated string length")
			}
			l := int(binary.LittleEndian.Uint16(buf[cur : cur+2]))
			cur += 2
			if cur+l > len(buf) {
				return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: truncated string data")
			}
			fields[i] = String(string(buf[cur : cur+l]))
			cur += l
		default:
			return Row{}, dberr.New(dberr.KindInvalidInput, "row codec: unknown field kind")
		}
	}
	return NewRow(fields), nil
}
