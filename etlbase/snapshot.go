package etlbase

import (
	"fmt"
	"strings"
)

// ColumnDef is the full definition of one column. Two columns are considered
// equivalent only if every field matches exactly.
type ColumnDef struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Length   int    `json:"length,omitempty"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
}

func (c ColumnDef) Equal(o ColumnDef) bool {
	return c == o
}

func (c ColumnDef) String() string {
	s := c.Type
	if c.Length > 0 {
		s += fmt.Sprintf("(%d)", c.Length)
	}
	if !c.Nullable {
		s += " NOT NULL"
	}
	if c.Default != "" {
		s += " DEFAULT " + c.Default
	}
	return s
}

// FKDef describes one foreign key constraint.
type FKDef struct {
	ConstrainedColumns []string `json:"constrained_columns"`
	ReferredTable      string   `json:"referred_table"`
	ReferredColumns    []string `json:"referred_columns"`
}

// Key identifies a foreign key by its tuple of constrained column names.
func (fk FKDef) Key() string {
	return strings.Join(fk.ConstrainedColumns, ",")
}

// IndexDef describes one index.
type IndexDef struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// SchemaSnapshot is an immutable point-in-time structural description of a
// table, created once per comparison by the introspector.
type SchemaSnapshot struct {
	TableName   string      `json:"table_name"`
	Columns     []ColumnDef `json:"columns"`
	PrimaryKeys []string    `json:"primary_keys"`
	ForeignKeys []FKDef     `json:"foreign_keys"`
	Indexes     []IndexDef  `json:"indexes"`
}

func (s SchemaSnapshot) ColumnCount() int {
	return len(s.Columns)
}

func (s SchemaSnapshot) Column(name string) (ColumnDef, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}
