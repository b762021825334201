package jet

import (
	"testing"
	"time"
)

func TestValueEqual(t *testing.T) {
	utc := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null equals null", Null(), Null(), true},
		{"equal text", Text("abc"), Text("abc"), true},
		{"different text", Text("abc"), Text("abd"), false},
		{"equal number", Number(5), Number(5), true},
		{"different number", Number(5), Number(6), false},
		{"equal bool", Bool(true), Bool(true), true},
		{"different bool", Bool(true), Bool(false), false},
		{"equal date", Date(utc), Date(utc), true},
		{"same instant different location", Date(utc), Date(utc.In(plusTwo)), true},
		{"different date", Date(utc), Date(utc.Add(time.Second)), false},

		// Type strictness: no cross-kind coercion, ever.
		{"number vs text rendering of it", Number(42), Text("42"), false},
		{"bool vs text rendering of it", Bool(true), Text("true"), false},
		{"null vs empty text", Null(), Text(""), false},
		{"null vs zero number", Null(), Number(0), false},
		{"date vs its text rendering", Date(utc), Text(utc.Format(time.RFC3339)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			// Equality is symmetric.
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("reversed Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueDisplay(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null is empty", Null(), ""},
		{"text verbatim", Text("hello"), "hello"},
		{"integer-valued number has no decimals", Number(42), "42"},
		{"fractional number", Number(2.5), "2.5"},
		{"bool", Bool(false), "false"},
		{"date is RFC3339", Date(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)), "2024-03-15T12:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNull, "null"},
		{KindText, "text"},
		{KindNumber, "number"},
		{KindBool, "bool"},
		{KindDate, "date"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
