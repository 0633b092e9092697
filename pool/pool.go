// Package pool owns the process-wide connection pools, one per
// (environment, source) pair.
package pool

import (
	"context"
	"sync"

	"github.com/hsharma0052/etlverify/config"
	"github.com/hsharma0052/etlverify/dbconn"
	"github.com/hsharma0052/etlverify/retry"
	"github.com/rs/zerolog"
)

// Source selects which pipeline output a connection points at.
type Source string

const (
	SourceReference Source = config.SourceReference // side A
	SourceCandidate Source = config.SourceCandidate // side B
)

// Sources lists both sides in comparison order: reference first.
var Sources = [2]Source{SourceReference, SourceCandidate}

type poolKey struct {
	env    string
	source Source
}

// poolEntry serializes dialing per key. A failed dial leaves pool nil so the
// next caller dials again.
type poolEntry struct {
	mu   sync.Mutex
	pool dbconn.Pool
}

// Manager lazily creates and caches one pool per (environment, source) pair
// for the process lifetime. All connection use goes through WithConn; the
// core never opens a raw connection.
type Manager struct {
	cfg           *config.Config
	logger        zerolog.Logger
	retrySettings retry.Settings

	mu    sync.Mutex
	pools map[poolKey]*poolEntry

	// dial is swapped out in tests.
	dial func(ctx context.Context, id dbconn.ID, connStr string, minConns, maxConns int) (dbconn.Pool, error)
}

func NewManager(cfg *config.Config, logger zerolog.Logger) *Manager {
	return &Manager{
		cfg:           cfg,
		logger:        logger,
		retrySettings: retry.DefaultSettings(),
		pools:         make(map[poolKey]*poolEntry),
		dial:          dbconn.NewPool,
	}
}

func (m *Manager) pool(ctx context.Context, env string, source Source) (dbconn.Pool, error) {
	connStr, err := m.cfg.ConnString(env, string(source))
	if err != nil {
		return nil, err
	}
	k := poolKey{env: env, source: source}
	m.mu.Lock()
	e, ok := m.pools[k]
	if !ok {
		e = &poolEntry{}
		m.pools[k] = e
	}
	m.mu.Unlock()

	// Dialing happens under the entry's own lock so a slow first-use dial of
	// one key never blocks connections to the others.
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pool != nil {
		return e.pool, nil
	}
	id := dbconn.ID(env + "-" + string(source))
	var p dbconn.Pool
	if err := retry.Do(ctx, m.retrySettings, m.logger, func(ctx context.Context) error {
		var dialErr error
		p, dialErr = m.dial(ctx, id, connStr, m.cfg.Pool.MinConns, m.cfg.Pool.MaxConns)
		return dialErr
	}); err != nil {
		return nil, err
	}
	m.logger.Debug().Str("pool", string(id)).Msgf("initialized connection pool")
	e.pool = p
	return p, nil
}

// WithConn runs fn with a pooled connection, guaranteeing exactly one
// release on every exit path.
func (m *Manager) WithConn(
	ctx context.Context,
	env string,
	source Source,
	fn func(context.Context, dbconn.Conn) error,
) error {
	p, err := m.pool(ctx, env, source)
	if err != nil {
		return err
	}
	conn, release, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, conn)
}

// Status is the connectivity state of one source.
type Status struct {
	OK  bool
	Err string
}

// CheckConnectivity pings both sources of an environment and reports
// per-source status. A failing source never masks the other's status.
func (m *Manager) CheckConnectivity(ctx context.Context, env string) map[Source]Status {
	ret := make(map[Source]Status, len(Sources))
	for _, source := range Sources {
		p, err := m.pool(ctx, env, source)
		if err == nil {
			err = p.Ping(ctx)
		}
		if err != nil {
			m.logger.Err(err).Str("environment", env).Str("source", string(source)).
				Msgf("connectivity check failed")
			ret[source] = Status{Err: err.Error()}
			continue
		}
		ret[source] = Status{OK: true}
	}
	return ret
}

// Close shuts down every pool created so far.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.pools {
		e.mu.Lock()
		if e.pool != nil {
			e.pool.Close()
		}
		e.mu.Unlock()
		delete(m.pools, k)
	}
}
