// Package datadiff compares two fully materialized row sets of the same
// logical table.
package datadiff

import (
	"fmt"
	"sort"

	"github.com/hsharma0052/etlverify/etlbase"
)

// MissingSide tags which side a row is absent from.
type MissingSide int

const (
	// MissingInA means the row exists only on side B (the candidate).
	MissingInA MissingSide = iota
	// MissingInB means the row exists only on side A (the reference).
	MissingInB
)

func (s MissingSide) String() string {
	switch s {
	case MissingInA:
		return "missing_in_a"
	case MissingInB:
		return "missing_in_b"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

type MissingRow struct {
	Side MissingSide `json:"side"`
	Row  etlbase.Row `json:"row"`
}

type ValueMismatch struct {
	Column   string        `json:"column"`
	RowIndex int           `json:"row_index"`
	ValueA   etlbase.Value `json:"value_a"`
	ValueB   etlbase.Value `json:"value_b"`
}

// Diff is the content difference between two row sets.
type Diff struct {
	RowCountDifference int             `json:"row_count_difference"`
	MissingRows        []MissingRow    `json:"missing_rows,omitempty"`
	ValueMismatches    []ValueMismatch `json:"value_mismatches,omitempty"`
}

func (d Diff) Empty() bool {
	return d.RowCountDifference == 0 &&
		len(d.MissingRows) == 0 &&
		len(d.ValueMismatches) == 0
}

// Compare computes the content differences between two row sets. It is pure
// and deterministic.
//
// Missing rows are the symmetric difference of canonical full-row tuples:
// identical duplicate rows within one side collapse to a single set member.
// That collapse is inherited behavior, kept deliberately rather than silently
// switched to multiset counting.
//
// Value mismatches compare the string-coerced value at the same positional
// index across the two independently loaded sequences, column by column over
// the columns common to both sides. This is only sound when both sides were
// retrieved in matching stable order; CompareByKey is preferred whenever a
// join key is available.
func Compare(a, b etlbase.RowSet) Diff {
	d := Diff{RowCountDifference: len(a) - len(b)}

	aKeys, aSet := canonicalSet(a)
	bKeys, bSet := canonicalSet(b)
	for _, k := range aKeys {
		if _, ok := bSet[k]; !ok {
			d.MissingRows = append(d.MissingRows, MissingRow{Side: MissingInB, Row: aSet[k]})
		}
	}
	for _, k := range bKeys {
		if _, ok := aSet[k]; !ok {
			d.MissingRows = append(d.MissingRows, MissingRow{Side: MissingInA, Row: bSet[k]})
		}
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for _, col := range commonColumns(a, b) {
		for i := 0; i < n; i++ {
			va, _ := a[i].Value(col)
			vb, _ := b[i].Value(col)
			if va.String() != vb.String() {
				d.ValueMismatches = append(d.ValueMismatches, ValueMismatch{
					Column:   col,
					RowIndex: i,
					ValueA:   va,
					ValueB:   vb,
				})
			}
		}
	}
	return d
}

// CompareByKey aligns the two row sets with a sorted merge join over the
// given key columns before comparing values, so the result does not depend
// on retrieval order. Rows whose key appears on only one side are reported
// missing; matched rows compare column by column over the common columns,
// with RowIndex referring to the row's original side A position (side B
// position for rows absent from A).
func CompareByKey(a, b etlbase.RowSet, keyColumns []string) Diff {
	d := Diff{RowCountDifference: len(a) - len(b)}

	as := sortByKey(a, keyColumns)
	bs := sortByKey(b, keyColumns)
	common := commonColumns(a, b)

	i, j := 0, 0
	for i < len(as) && j < len(bs) {
		switch {
		case as[i].key < bs[j].key:
			d.MissingRows = append(d.MissingRows, MissingRow{Side: MissingInB, Row: as[i].row})
			i++
		case as[i].key > bs[j].key:
			d.MissingRows = append(d.MissingRows, MissingRow{Side: MissingInA, Row: bs[j].row})
			j++
		default:
			for _, col := range common {
				va, _ := as[i].row.Value(col)
				vb, _ := bs[j].row.Value(col)
				if va.String() != vb.String() {
					d.ValueMismatches = append(d.ValueMismatches, ValueMismatch{
						Column:   col,
						RowIndex: as[i].index,
						ValueA:   va,
						ValueB:   vb,
					})
				}
			}
			i++
			j++
		}
	}
	for ; i < len(as); i++ {
		d.MissingRows = append(d.MissingRows, MissingRow{Side: MissingInB, Row: as[i].row})
	}
	for ; j < len(bs); j++ {
		d.MissingRows = append(d.MissingRows, MissingRow{Side: MissingInA, Row: bs[j].row})
	}

	sort.Slice(d.ValueMismatches, func(x, y int) bool {
		if d.ValueMismatches[x].Column != d.ValueMismatches[y].Column {
			return d.ValueMismatches[x].Column < d.ValueMismatches[y].Column
		}
		return d.ValueMismatches[x].RowIndex < d.ValueMismatches[y].RowIndex
	})
	return d
}

type keyedRow struct {
	key   string
	row   etlbase.Row
	index int
}

func sortByKey(rs etlbase.RowSet, keyColumns []string) []keyedRow {
	ret := make([]keyedRow, len(rs))
	for i, r := range rs {
		ret[i] = keyedRow{key: r.KeyCanonical(keyColumns), row: r, index: i}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].key < ret[j].key
	})
	return ret
}

func canonicalSet(rs etlbase.RowSet) ([]string, map[string]etlbase.Row) {
	keys := make([]string, 0, len(rs))
	set := make(map[string]etlbase.Row, len(rs))
	for _, r := range rs {
		k := r.Canonical()
		if _, ok := set[k]; ok {
			continue
		}
		set[k] = r
		keys = append(keys, k)
	}
	return keys, set
}

// commonColumns returns the columns present in both row sets, preserving
// side A's column order. Disjoint column sets yield nil.
func commonColumns(a, b etlbase.RowSet) []string {
	bCols := make(map[string]struct{})
	for _, c := range b.Columns() {
		bCols[c] = struct{}{}
	}
	var ret []string
	for _, c := range a.Columns() {
		if _, ok := bCols[c]; ok {
			ret = append(ret, c)
		}
	}
	return ret
}
