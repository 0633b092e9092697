package report

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/datadiff"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/hsharma0052/etlverify/schemadiff"
	"github.com/hsharma0052/etlverify/tablecompare"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLogReporter(t *testing.T) {
	mismatched := &tablecompare.Result{
		TableName: "orders",
		Summary: tablecompare.Summary{
			RowCounts:            tablecompare.SideCounts{A: 2, B: 1},
			HasSchemaDifferences: true,
			HasDataDifferences:   true,
		},
		SchemaDiff: schemadiff.Diff{
			ColumnDifferences: []schemadiff.ColumnDifference{{
				Kind:   schemadiff.MissingInB,
				Column: "email",
				SideA:  &etlbase.ColumnDef{Name: "email", Type: "varchar", Length: 255},
			}},
			PrimaryKeyDifference: &schemadiff.PrimaryKeyDifference{
				SideA: []string{"id"},
				SideB: []string{"id", "region"},
			},
		},
		DataDiff: datadiff.Diff{
			RowCountDifference: 1,
			MissingRows: []datadiff.MissingRow{{
				Side: datadiff.MissingInB,
				Row: etlbase.NewRow(
					etlbase.Pair{Column: "id", Value: etlbase.IntValue(2)},
				),
			}},
			ValueMismatches: []datadiff.ValueMismatch{{
				Column:   "total",
				RowIndex: 0,
				ValueA:   etlbase.TextValue("10.00"),
				ValueB:   etlbase.TextValue("10.01"),
			}},
		},
	}

	for _, tc := range []struct {
		desc     string
		obj      ReportableObject
		expected []string
	}{
		{
			desc:     "status",
			obj:      StatusReport{Info: "batch complete"},
			expected: []string{"batch complete"},
		},
		{
			desc: "table error",
			obj: TableError{
				Environment: "staging",
				TableName:   "orders",
				Err:         errors.New("boom"),
			},
			expected: []string{"error comparing table", "boom", "orders"},
		},
		{
			desc: "matching summary",
			obj: TableSummary{
				Environment: "staging",
				Result:      &tablecompare.Result{TableName: "orders"},
			},
			expected: []string{"table matches"},
		},
		{
			desc:     "mismatched summary",
			obj:      TableSummary{Environment: "staging", Result: mismatched},
			expected: []string{"column mismatch", "primary key mismatch", "row count mismatch", "missing row", "value mismatch"},
		},
		{
			desc:     "unknown object",
			obj:      struct{ X int }{},
			expected: []string{"unknown object type"},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			var buf bytes.Buffer
			r := LogReporter{Logger: zerolog.New(&buf)}
			r.Report(tc.obj)
			r.Close()
			for _, want := range tc.expected {
				require.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestCombinedReporter(t *testing.T) {
	var a, b bytes.Buffer
	c := CombinedReporter{Reporters: []Reporter{
		LogReporter{Logger: zerolog.New(&a)},
		LogReporter{Logger: zerolog.New(&b)},
	}}
	c.Report(StatusReport{Info: "fanned out"})
	c.Close()
	require.Contains(t, a.String(), "fanned out")
	require.Contains(t, b.String(), "fanned out")
}
