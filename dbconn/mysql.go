package dbconn

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/hsharma0052/etlverify/etlbase"
)

type MySQLConn struct {
	id ID
	*sql.Conn
}

var _ Conn = (*MySQLConn)(nil)

func NewMySQLConn(id ID, conn *sql.Conn) *MySQLConn {
	return &MySQLConn{id: id, Conn: conn}
}

func (c *MySQLConn) ID() ID {
	return c.id
}

func (c *MySQLConn) Dialect() string {
	return "MySQL"
}

func (c *MySQLConn) Ping(ctx context.Context) error {
	return etlbase.MarkConnectivity(c.Conn.PingContext(ctx))
}

type MySQLPool struct {
	id ID
	db *sql.DB
}

var _ Pool = (*MySQLPool)(nil)

func NewMySQLPool(
	ctx context.Context, id ID, connStr string, minConns, maxConns int,
) (*MySQLPool, error) {
	// Accept both plain DSNs and mysql:// URL form.
	dsn := strings.TrimPrefix(connStr, "mysql://")
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, etlbase.MarkConfiguration(errors.Wrapf(err, "error parsing dsn for %s", id))
	}
	cfg.ParseTime = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, etlbase.MarkConnectivity(errors.Wrapf(err, "error opening %s", id))
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(minConns)
	return &MySQLPool{id: id, db: db}, nil
}

func (p *MySQLPool) ID() ID {
	return p.id
}

func (p *MySQLPool) Acquire(ctx context.Context) (Conn, func(), error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, nil, etlbase.MarkConnectivity(
			errors.Wrapf(err, "error acquiring connection from %s", p.id))
	}
	release := func() {
		_ = conn.Close()
	}
	return NewMySQLConn(p.id, conn), release, nil
}

func (p *MySQLPool) Ping(ctx context.Context) error {
	return etlbase.MarkConnectivity(p.db.PingContext(ctx))
}

func (p *MySQLPool) Close() {
	_ = p.db.Close()
}
