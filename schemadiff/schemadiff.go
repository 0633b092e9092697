// Package schemadiff compares two schema snapshots of the same logical table.
package schemadiff

import (
	"fmt"

	"github.com/hsharma0052/etlverify/etlbase"
)

// DifferenceKind tags which side an object is missing from, or that a common
// object has a differing definition.
type DifferenceKind int

const (
	// MissingInA means the object exists only on side B (the candidate).
	MissingInA DifferenceKind = iota
	// MissingInB means the object exists only on side A (the reference).
	MissingInB
	DifferentDefinition
)

func (k DifferenceKind) String() string {
	switch k {
	case MissingInA:
		return "missing_in_a"
	case MissingInB:
		return "missing_in_b"
	case DifferentDefinition:
		return "different_definition"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ColumnDifference records a column present on only one side, or present on
// both with differing full definitions. SideA/SideB are nil on the missing
// side.
type ColumnDifference struct {
	Kind   DifferenceKind     `json:"kind"`
	Column string             `json:"column"`
	SideA  *etlbase.ColumnDef `json:"side_a,omitempty"`
	SideB  *etlbase.ColumnDef `json:"side_b,omitempty"`
}

// PrimaryKeyDifference records both ordered key sequences when they differ.
type PrimaryKeyDifference struct {
	SideA []string `json:"side_a"`
	SideB []string `json:"side_b"`
}

type ForeignKeyDifference struct {
	Kind   DifferenceKind `json:"kind"`
	Detail etlbase.FKDef  `json:"detail"`
}

type IndexDifference struct {
	Kind   DifferenceKind   `json:"kind"`
	Detail etlbase.IndexDef `json:"detail"`
}

// Diff is the structural difference between two snapshots of a table.
type Diff struct {
	ColumnDifferences     []ColumnDifference     `json:"column_differences,omitempty"`
	PrimaryKeyDifference  *PrimaryKeyDifference  `json:"primary_key_difference,omitempty"`
	ForeignKeyDifferences []ForeignKeyDifference `json:"foreign_key_differences,omitempty"`
	IndexDifferences      []IndexDifference      `json:"index_differences,omitempty"`
}

func (d Diff) Empty() bool {
	return len(d.ColumnDifferences) == 0 &&
		d.PrimaryKeyDifference == nil &&
		len(d.ForeignKeyDifferences) == 0 &&
		len(d.IndexDifferences) == 0
}

// Compare computes the structural differences between two snapshots. It is
// pure and deterministic: entries follow snapshot declaration order, side A
// first. Columns present on both sides compare field-wise over the full
// definition (name, type, length, nullability, default).
func Compare(a, b etlbase.SchemaSnapshot) Diff {
	var d Diff

	bCols := make(map[string]etlbase.ColumnDef, len(b.Columns))
	for _, col := range b.Columns {
		bCols[col.Name] = col
	}
	aCols := make(map[string]etlbase.ColumnDef, len(a.Columns))
	for _, col := range a.Columns {
		aCols[col.Name] = col
	}

	for _, aCol := range a.Columns {
		aCol := aCol
		bCol, ok := bCols[aCol.Name]
		if !ok {
			d.ColumnDifferences = append(d.ColumnDifferences, ColumnDifference{
				Kind:   MissingInB,
				Column: aCol.Name,
				SideA:  &aCol,
			})
			continue
		}
		if !aCol.Equal(bCol) {
			bCol := bCol
			d.ColumnDifferences = append(d.ColumnDifferences, ColumnDifference{
				Kind:   DifferentDefinition,
				Column: aCol.Name,
				SideA:  &aCol,
				SideB:  &bCol,
			})
		}
	}
	for _, bCol := range b.Columns {
		if _, ok := aCols[bCol.Name]; !ok {
			bCol := bCol
			d.ColumnDifferences = append(d.ColumnDifferences, ColumnDifference{
				Kind:   MissingInA,
				Column: bCol.Name,
				SideB:  &bCol,
			})
		}
	}

	if !stringSlicesEqual(a.PrimaryKeys, b.PrimaryKeys) {
		d.PrimaryKeyDifference = &PrimaryKeyDifference{
			SideA: append([]string(nil), a.PrimaryKeys...),
			SideB: append([]string(nil), b.PrimaryKeys...),
		}
	}

	bFKs := make(map[string]etlbase.FKDef, len(b.ForeignKeys))
	for _, fk := range b.ForeignKeys {
		bFKs[fk.Key()] = fk
	}
	aFKs := make(map[string]etlbase.FKDef, len(a.ForeignKeys))
	for _, fk := range a.ForeignKeys {
		aFKs[fk.Key()] = fk
	}
	for _, fk := range a.ForeignKeys {
		if _, ok := bFKs[fk.Key()]; !ok {
			d.ForeignKeyDifferences = append(d.ForeignKeyDifferences, ForeignKeyDifference{
				Kind:   MissingInB,
				Detail: fk,
			})
		}
	}
	for _, fk := range b.ForeignKeys {
		if _, ok := aFKs[fk.Key()]; !ok {
			d.ForeignKeyDifferences = append(d.ForeignKeyDifferences, ForeignKeyDifference{
				Kind:   MissingInA,
				Detail: fk,
			})
		}
	}

	bIdxs := make(map[string]etlbase.IndexDef, len(b.Indexes))
	for _, idx := range b.Indexes {
		bIdxs[idx.Name] = idx
	}
	aIdxs := make(map[string]etlbase.IndexDef, len(a.Indexes))
	for _, idx := range a.Indexes {
		aIdxs[idx.Name] = idx
	}
	for _, idx := range a.Indexes {
		if _, ok := bIdxs[idx.Name]; !ok {
			d.IndexDifferences = append(d.IndexDifferences, IndexDifference{
				Kind:   MissingInB,
				Detail: idx,
			})
		}
	}
	for _, idx := range b.Indexes {
		if _, ok := aIdxs[idx.Name]; !ok {
			d.IndexDifferences = append(d.IndexDifferences, IndexDifference{
				Kind:   MissingInA,
				Detail: idx,
			})
		}
	}

	return d
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
