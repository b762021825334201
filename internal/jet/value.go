// Defines the scalar cell value type and its exact-equality semantics.

package jet

import (
	"strconv"
	"time"
)

// Kind identifies the type held by a Value.
type Kind uint8

// Value kinds. The set matches what desktop-database columns decode to:
// scalars only, no nested structures.
const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
	KindDate
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	}
	return "unknown"
}

// Value is a single cell value: text, number, bool, date or null.
//
// Comparison via [Value.Equal] is type-strict: the number 5 never equals
// the text "5". This is what makes cross-table matching predictable.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
	t    time.Time
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Date returns a date value.
func Date(t time.Time) Value {
	return Value{kind: KindDate, t: t}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// TextValue returns the text payload. Only meaningful for KindText.
func (v Value) TextValue() string { return v.text }

// NumberValue returns the numeric payload. Only meaningful for KindNumber.
func (v Value) NumberValue() float64 { return v.num }

// BoolValue returns the boolean payload. Only meaningful for KindBool.
func (v Value) BoolValue() bool { return v.b }

// DateValue returns the date payload. Only meaningful for KindDate.
func (v Value) DateValue() time.Time { return v.t }

// Equal reports whether two values have the same kind and the same payload.
//
// Null equals null. Dates compare with time.Time.Equal so equivalent
// instants in different locations match.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	}
	return false
}

// Display returns the value rendered as grid text. Null renders as the
// empty string; this is also the length fed to column width estimation.
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format(time.RFC3339)
	}
	return ""
}

// Row is a read-only snapshot of one table row, keyed by column name.
// Rows have no identity beyond their positional offset within the table.
type Row map[string]Value
