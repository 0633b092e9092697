package dbconn

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/etlbase"
)

type ID string

// Conn is a single scoped database connection. Connections are only handed
// out by a Pool; the release function returned by Acquire owns the lifecycle,
// so Conn itself has no Close.
type Conn interface {
	ID() ID
	Dialect() string
	Ping(ctx context.Context) error
}

// Pool hands out pooled connections with scoped release semantics.
type Pool interface {
	ID() ID
	// Acquire returns a connection and its release function. The release
	// function must be called exactly once; acquisition beyond the pool's
	// upper bound blocks until a connection is released.
	Acquire(ctx context.Context) (Conn, func(), error)
	Ping(ctx context.Context) error
	Close()
}

// NewPool dials a connection pool for the given connection string,
// dispatching on the URL scheme.
func NewPool(
	ctx context.Context, id ID, connStr string, minConns, maxConns int,
) (Pool, error) {
	if len(connStr) == 0 {
		return nil, etlbase.MarkConfiguration(errors.Newf("empty connection string for %s", id))
	}
	before := strings.SplitN(connStr, "://", 2)
	switch {
	case strings.Contains(before[0], "postgres"):
		return NewPGPool(ctx, id, connStr, minConns, maxConns)
	case strings.Contains(before[0], "mysql"):
		return NewMySQLPool(ctx, id, connStr, minConns, maxConns)
	}
	return nil, etlbase.MarkConfiguration(
		errors.Newf("unrecognised scheme %s from %s", before[0], connStr))
}
