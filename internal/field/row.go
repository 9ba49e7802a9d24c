package field

import "strings"

// Row is an ordered, fixed-width sequence of Fields.
type Row struct {
	fields []Field
}

// NewRow constructs a Row from a slice of Fields, taking ownership of it.
func NewRow(fields []Field) Row { return Row{fields: fields} }

// Width returns the number of fields in the row.
func (r Row) Width() int { return len(r.fields) }

// Get returns the field at index i.
func (r Row) Get(i int) Field { return r.fields[i] }

// Set replaces the field at index i.
func (r Row) Set(i int, f Field) { r.fields[i] = f }

// Fields returns the underlying slice. Callers must not mutate it unless
// they hold exclusive ownership of the Row.
func (r Row) Fields() []Field { return r.fields }

// Clone returns a Row with an independent backing slice.
func (r Row) Clone() Row {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return Row{fields: out}
}

// Concat returns a new Row with other's fields appended after r's.
func (r Row) Concat(other Row) Row {
	out := make([]Field, 0, len(r.fields)+len(other.fields))
	out = append(out, r.fields...)
	out = append(out, other.fields...)
	return Row{fields: out}
}

func (r Row) String() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Label is an optional column name produced by the planner.
type Label struct {
	Name  string
	Valid bool
}

// NoLabel is the empty/absent Label.
var NoLabel = Label{}

// NewLabel returns a Label carrying name.
func NewLabel(name string) Label { return Label{Name: name, Valid: true} }
