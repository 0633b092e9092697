package dbconn

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGConn struct {
	id ID
	*pgx.Conn
}

var _ Conn = (*PGConn)(nil)

func NewPGConn(id ID, conn *pgx.Conn) *PGConn {
	return &PGConn{id: id, Conn: conn}
}

func (c *PGConn) ID() ID {
	return c.id
}

func (c *PGConn) Dialect() string {
	return "PostgreSQL"
}

func (c *PGConn) Ping(ctx context.Context) error {
	return etlbase.MarkConnectivity(c.Conn.Ping(ctx))
}

type PGPool struct {
	id   ID
	pool *pgxpool.Pool
}

var _ Pool = (*PGPool)(nil)

func NewPGPool(
	ctx context.Context, id ID, connStr string, minConns, maxConns int,
) (*PGPool, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, etlbase.MarkConfiguration(errors.Wrapf(err, "unable to parse url for %s", id))
	}
	cfg.MinConns = int32(minConns)
	cfg.MaxConns = int32(maxConns)
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, etlbase.MarkConnectivity(errors.Wrapf(err, "error creating pool for %s", id))
	}
	return &PGPool{id: id, pool: pool}, nil
}

func (p *PGPool) ID() ID {
	return p.id
}

func (p *PGPool) Acquire(ctx context.Context) (Conn, func(), error) {
	pc, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, etlbase.MarkConnectivity(
			errors.Wrapf(err, "error acquiring connection from %s", p.id))
	}
	return NewPGConn(p.id, pc.Conn()), pc.Release, nil
}

func (p *PGPool) Ping(ctx context.Context) error {
	return etlbase.MarkConnectivity(p.pool.Ping(ctx))
}

func (p *PGPool) Close() {
	p.pool.Close()
}
