package dbconn

import (
	"context"
	"sync"
)

// FakeConn is a connection stub for tests.
type FakeConn struct {
	id ID
}

var _ Conn = FakeConn{}

func MakeFakeConn(id ID) FakeConn {
	return FakeConn{id: id}
}

func (f FakeConn) ID() ID {
	return f.id
}

func (f FakeConn) Dialect() string {
	return "fake"
}

func (f FakeConn) Ping(ctx context.Context) error {
	return nil
}

// FakePool is a pool stub for tests. It tracks acquire/release pairing and
// can be forced to fail.
type FakePool struct {
	id      ID
	mu      sync.Mutex
	dialErr error

	Acquires int
	Releases int
}

var _ Pool = (*FakePool)(nil)

func MakeFakePool(id ID) *FakePool {
	return &FakePool{id: id}
}

// FailWith makes subsequent Acquire and Ping calls return err.
func (p *FakePool) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialErr = err
}

func (p *FakePool) ID() ID {
	return p.id
}

func (p *FakePool) Acquire(ctx context.Context) (Conn, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dialErr != nil {
		return nil, nil, p.dialErr
	}
	p.Acquires++
	var once sync.Once
	release := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.Releases++
		})
	}
	return MakeFakeConn(p.id), release, nil
}

func (p *FakePool) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dialErr
}

func (p *FakePool) Close() {}
