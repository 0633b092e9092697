package etlbase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// ValueKind enumerates the scalar kinds a loaded cell can take.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindInt
	KindReal
	KindTimestamp
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindTimestamp:
		return "timestamp"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// NullSentinel is the fixed string a NULL coerces to when values are
// stringified for comparison and reporting.
const NullSentinel = "<NULL>"

// Value is an immutable tagged scalar. The zero Value is NULL.
type Value struct {
	kind ValueKind
	text string
	i    int64
	real *apd.Decimal
	ts   time.Time
}

func NullValue() Value {
	return Value{kind: KindNull}
}

func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

func IntValue(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// RealValue takes ownership of d; the caller must not mutate it afterwards.
func RealValue(d *apd.Decimal) Value {
	return Value{kind: KindReal, real: d}
}

func TimestampValue(t time.Time) Value {
	return Value{kind: KindTimestamp, ts: t}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String coerces the value to its comparison form. NULL maps to NullSentinel.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return NullSentinel
	case KindText:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return v.real.String()
	case KindTimestamp:
		return v.ts.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("<%s>", v.kind)
}

// Canonical returns a kind-prefixed encoding. The prefix keeps values of
// different kinds distinct, so the text "1" and the integer 1 never collapse
// into the same set member, and no legitimate value can collide with NULL.
func (v Value) Canonical() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.kind.String() + ":" + v.String()
}

func (v Value) Equal(o Value) bool {
	return v.Canonical() == o.Canonical()
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNull {
		return []byte("null"), nil
	}
	return json.Marshal(v.String())
}
