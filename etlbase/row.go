package etlbase

import (
	"encoding/json"
	"sort"
	"strings"
)

// Pair is a single column/value cell.
type Pair struct {
	Column string
	Value  Value
}

// Row is an ordered sequence of column/value pairs, preserving the order the
// loader produced. Rows are immutable once built.
type Row struct {
	columns []string
	values  []Value
}

func NewRow(pairs ...Pair) Row {
	r := Row{
		columns: make([]string, len(pairs)),
		values:  make([]Value, len(pairs)),
	}
	for i, p := range pairs {
		r.columns[i] = p.Column
		r.values[i] = p.Value
	}
	return r
}

func (r Row) Len() int {
	return len(r.columns)
}

// Columns returns the column names in load order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r Row) Pairs() []Pair {
	ret := make([]Pair, len(r.columns))
	for i := range r.columns {
		ret[i] = Pair{Column: r.columns[i], Value: r.values[i]}
	}
	return ret
}

// Value returns the value for a column, reporting whether the column exists.
func (r Row) Value(column string) (Value, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return Value{}, false
}

// Canonical encodes the full row as a sorted-by-column-name sequence of
// column/value pairs. Two rows with equal canonical forms are equal as
// full-row tuples regardless of column order.
func (r Row) Canonical() string {
	pairs := make([]string, len(r.columns))
	for i := range r.columns {
		pairs[i] = r.columns[i] + "=" + r.values[i].Canonical()
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x1f")
}

// KeyCanonical encodes only the given key columns, in the given order.
// Missing key columns encode as NULL.
func (r Row) KeyCanonical(keyColumns []string) string {
	parts := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		v, _ := r.Value(col)
		parts[i] = v.Canonical()
	}
	return strings.Join(parts, "\x1f")
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Pairs())
}

// RowSet is the fully materialized contents of one table on one side.
// Loaders produce uniform rows, so the first row's columns describe the set.
type RowSet []Row

func (rs RowSet) Columns() []string {
	if len(rs) == 0 {
		return nil
	}
	return rs[0].Columns()
}
