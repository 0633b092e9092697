// Package tablecompare compares one table between the reference and
// candidate pipelines: schema first, then the full data set.
package tablecompare

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/datadiff"
	"github.com/hsharma0052/etlverify/dbconn"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/hsharma0052/etlverify/inspect"
	"github.com/hsharma0052/etlverify/pool"
	"github.com/hsharma0052/etlverify/schemadiff"
	"github.com/rs/zerolog"
)

// ConnProvider hands out scoped connections per (environment, source).
type ConnProvider interface {
	WithConn(ctx context.Context, env string, source pool.Source, fn func(context.Context, dbconn.Conn) error) error
}

// Fetcher loads one side's schema and rows over a connection.
type Fetcher interface {
	Schema(ctx context.Context, conn dbconn.Conn, table string) (etlbase.SchemaSnapshot, error)
	Rows(ctx context.Context, conn dbconn.Conn, table string, orderBy []string) (etlbase.RowSet, error)
}

// DBFetcher is the live Fetcher backed by database introspection.
type DBFetcher struct{}

func (DBFetcher) Schema(
	ctx context.Context, conn dbconn.Conn, table string,
) (etlbase.SchemaSnapshot, error) {
	return inspect.Schema(ctx, conn, table)
}

func (DBFetcher) Rows(
	ctx context.Context, conn dbconn.Conn, table string, orderBy []string,
) (etlbase.RowSet, error) {
	return inspect.LoadRows(ctx, conn, table, inspect.WithOrderBy(orderBy...))
}

// SideCounts holds one metric for both sides.
type SideCounts struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Summary is the at-a-glance outcome of one table comparison.
type Summary struct {
	RowCounts            SideCounts `json:"row_counts"`
	ColumnCounts         SideCounts `json:"column_counts"`
	HasSchemaDifferences bool       `json:"has_schema_differences"`
	HasDataDifferences   bool       `json:"has_data_differences"`
}

// Result is the full outcome of one table comparison.
type Result struct {
	TableName  string          `json:"table_name"`
	Summary    Summary         `json:"summary"`
	SchemaDiff schemadiff.Diff `json:"schema_diff"`
	DataDiff   datadiff.Diff   `json:"data_diff"`
}

// Identical reports whether the table matched on both schema and data.
func (r *Result) Identical() bool {
	return r.SchemaDiff.Empty() && r.DataDiff.Empty()
}

// Service compares tables between the two sources of an environment.
type Service struct {
	conns        ConnProvider
	fetcher      Fetcher
	logger       zerolog.Logger
	queryTimeout time.Duration
}

func NewService(
	conns ConnProvider, fetcher Fetcher, logger zerolog.Logger, queryTimeout time.Duration,
) *Service {
	return &Service{
		conns:        conns,
		fetcher:      fetcher,
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

type side struct {
	schema etlbase.SchemaSnapshot
	rows   etlbase.RowSet
}

// Compare fetches both sides of the table and diffs them. Schema problems on
// either side abort before any rows are loaded from that side.
func (s *Service) Compare(ctx context.Context, env string, table string) (*Result, error) {
	var sides [2]side
	for i, source := range pool.Sources {
		i, source := i, source
		if err := s.conns.WithConn(ctx, env, source, func(ctx context.Context, conn dbconn.Conn) error {
			schema, err := s.fetchSchema(ctx, conn, table)
			if err != nil {
				return err
			}
			rows, err := s.fetchRows(ctx, conn, table, schema.PrimaryKeys)
			if err != nil {
				return err
			}
			sides[i] = side{schema: schema, rows: rows}
			return nil
		}); err != nil {
			return nil, errors.Wrapf(err, "error comparing table %s on %s", table, source)
		}
	}
	a, b := sides[0], sides[1]

	sd := schemadiff.Compare(a.schema, b.schema)
	var dd datadiff.Diff
	if key := comparisonKey(a.schema, b.schema); len(key) > 0 {
		dd = datadiff.CompareByKey(a.rows, b.rows, key)
	} else {
		dd = datadiff.Compare(a.rows, b.rows)
	}

	res := &Result{
		TableName: table,
		Summary: Summary{
			RowCounts:            SideCounts{A: len(a.rows), B: len(b.rows)},
			ColumnCounts:         SideCounts{A: a.schema.ColumnCount(), B: b.schema.ColumnCount()},
			HasSchemaDifferences: !sd.Empty(),
			HasDataDifferences:   !dd.Empty(),
		},
		SchemaDiff: sd,
		DataDiff:   dd,
	}
	s.logger.Debug().
		Str("table", table).
		Str("environment", env).
		Bool("schema_differences", res.Summary.HasSchemaDifferences).
		Bool("data_differences", res.Summary.HasDataDifferences).
		Msgf("table comparison complete")
	return res, nil
}

func (s *Service) fetchSchema(
	ctx context.Context, conn dbconn.Conn, table string,
) (etlbase.SchemaSnapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.fetcher.Schema(ctx, conn, table)
}

func (s *Service) fetchRows(
	ctx context.Context, conn dbconn.Conn, table string, orderBy []string,
) (etlbase.RowSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.fetcher.Rows(ctx, conn, table, orderBy)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// comparisonKey picks the primary key as the row-matching key when both
// sides agree on it. Positional comparison is the fallback.
func comparisonKey(a, b etlbase.SchemaSnapshot) []string {
	if len(a.PrimaryKeys) == 0 || len(a.PrimaryKeys) != len(b.PrimaryKeys) {
		return nil
	}
	for i := range a.PrimaryKeys {
		if a.PrimaryKeys[i] != b.PrimaryKeys[i] {
			return nil
		}
	}
	return a.PrimaryKeys
}
