package tablecompare

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/dbconn"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/hsharma0052/etlverify/pool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeProvider hands out fake connections and tracks acquire/release pairing.
type fakeProvider struct {
	pools map[pool.Source]*dbconn.FakePool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		pools: map[pool.Source]*dbconn.FakePool{
			pool.SourceReference: dbconn.MakeFakePool("test-reference"),
			pool.SourceCandidate: dbconn.MakeFakePool("test-candidate"),
		},
	}
}

func (f *fakeProvider) WithConn(
	ctx context.Context, env string, source pool.Source, fn func(context.Context, dbconn.Conn) error,
) error {
	conn, release, err := f.pools[source].Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, conn)
}

type sideData struct {
	schema etlbase.SchemaSnapshot
	rows   etlbase.RowSet
	err    error
}

// fakeFetcher serves canned schemas and rows keyed by connection ID.
type fakeFetcher struct {
	sides       map[dbconn.ID]sideData
	rowsOrderBy map[dbconn.ID][]string
}

func (f *fakeFetcher) Schema(
	ctx context.Context, conn dbconn.Conn, table string,
) (etlbase.SchemaSnapshot, error) {
	s := f.sides[conn.ID()]
	return s.schema, s.err
}

func (f *fakeFetcher) Rows(
	ctx context.Context, conn dbconn.Conn, table string, orderBy []string,
) (etlbase.RowSet, error) {
	if f.rowsOrderBy == nil {
		f.rowsOrderBy = map[dbconn.ID][]string{}
	}
	f.rowsOrderBy[conn.ID()] = orderBy
	s := f.sides[conn.ID()]
	return s.rows, s.err
}

func schemaWithPK(pks ...string) etlbase.SchemaSnapshot {
	return etlbase.SchemaSnapshot{
		TableName: "orders",
		Columns: []etlbase.ColumnDef{
			{Name: "id", Type: "bigint"},
			{Name: "total", Type: "numeric", Nullable: true},
		},
		PrimaryKeys: pks,
	}
}

func orderRow(id int64, total string) etlbase.Row {
	return etlbase.NewRow(
		etlbase.Pair{Column: "id", Value: etlbase.IntValue(id)},
		etlbase.Pair{Column: "total", Value: etlbase.TextValue(total)},
	)
}

func TestCompareMatchingTable(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	fetcher := &fakeFetcher{sides: map[dbconn.ID]sideData{
		"test-reference": {
			schema: schemaWithPK("id"),
			rows:   etlbase.RowSet{orderRow(1, "10.00"), orderRow(2, "20.00")},
		},
		"test-candidate": {
			schema: schemaWithPK("id"),
			rows:   etlbase.RowSet{orderRow(2, "20.00"), orderRow(1, "10.00")},
		},
	}}
	svc := NewService(provider, fetcher, zerolog.Nop(), time.Minute)

	res, err := svc.Compare(ctx, "staging", "orders")
	require.NoError(t, err)
	require.Equal(t, "orders", res.TableName)
	require.True(t, res.Identical())
	require.Equal(t, SideCounts{A: 2, B: 2}, res.Summary.RowCounts)
	require.Equal(t, SideCounts{A: 2, B: 2}, res.Summary.ColumnCounts)

	// The shared primary key drives both the load ordering and the keyed
	// diff, which is why the reversed candidate rows still match.
	require.Equal(t, []string{"id"}, fetcher.rowsOrderBy["test-reference"])
	require.Equal(t, []string{"id"}, fetcher.rowsOrderBy["test-candidate"])

	// One acquire/release pair per side.
	for source, p := range provider.pools {
		require.Equal(t, 1, p.Acquires, source)
		require.Equal(t, 1, p.Releases, source)
	}
}

func TestCompareDataMismatch(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	fetcher := &fakeFetcher{sides: map[dbconn.ID]sideData{
		"test-reference": {
			schema: schemaWithPK("id"),
			rows:   etlbase.RowSet{orderRow(1, "10.00")},
		},
		"test-candidate": {
			schema: schemaWithPK("id"),
			rows:   etlbase.RowSet{orderRow(1, "10.01")},
		},
	}}
	svc := NewService(provider, fetcher, zerolog.Nop(), time.Minute)

	res, err := svc.Compare(ctx, "staging", "orders")
	require.NoError(t, err)
	require.False(t, res.Identical())
	require.True(t, res.Summary.HasDataDifferences)
	require.False(t, res.Summary.HasSchemaDifferences)
	require.Len(t, res.DataDiff.ValueMismatches, 1)
	require.Equal(t, "total", res.DataDiff.ValueMismatches[0].Column)
}

func TestComparePositionalFallback(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	// The sides disagree on the primary key, so the keyed join cannot be
	// trusted and comparison falls back to positional.
	fetcher := &fakeFetcher{sides: map[dbconn.ID]sideData{
		"test-reference": {
			schema: schemaWithPK("id"),
			rows:   etlbase.RowSet{orderRow(1, "10.00")},
		},
		"test-candidate": {
			schema: schemaWithPK(),
			rows:   etlbase.RowSet{orderRow(1, "10.00")},
		},
	}}
	svc := NewService(provider, fetcher, zerolog.Nop(), time.Minute)

	res, err := svc.Compare(ctx, "staging", "orders")
	require.NoError(t, err)
	require.True(t, res.Summary.HasSchemaDifferences)
	require.NotNil(t, res.SchemaDiff.PrimaryKeyDifference)
	require.True(t, res.DataDiff.Empty())
}

func TestCompareErrorNamesTableAndSource(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	fetcher := &fakeFetcher{sides: map[dbconn.ID]sideData{
		"test-reference": {
			schema: schemaWithPK("id"),
			rows:   etlbase.RowSet{orderRow(1, "10.00")},
		},
		"test-candidate": {
			err: etlbase.MarkNotFound(errors.New("table orders not found")),
		},
	}}
	svc := NewService(provider, fetcher, zerolog.Nop(), time.Minute)

	_, err := svc.Compare(ctx, "staging", "orders")
	require.Error(t, err)
	require.True(t, etlbase.IsNotFound(err))
	require.ErrorContains(t, err, "orders")
	require.ErrorContains(t, err, "candidate")

	// Connections are still released on the failure path.
	for source, p := range provider.pools {
		require.Equal(t, p.Acquires, p.Releases, source)
	}
}
