package hostlock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker leases hosts within one process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]string{}}
}

func (l *LocalLocker) Acquire(ctx context.Context, host string, wait time.Duration) (Lease, error) {
	token := newToken()
	err := poll(ctx, host, wait, func() (bool, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, busy := l.held[host]; busy {
			return false, nil
		}
		l.held[host] = token
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &localLease{locker: l, host: host, token: token}, nil
}

func (l *LocalLocker) Ping(context.Context) error { return nil }

type localLease struct {
	locker *LocalLocker
	host   string
	token  string
}

func (r *localLease) Release(context.Context) error {
	r.locker.mu.Lock()
	defer r.locker.mu.Unlock()
	if r.locker.held[r.host] == r.token {
		delete(r.locker.held, r.host)
	}
	return nil
}

var (
	_ Locker = (*LocalLocker)(nil)
	_ Locker = (*RedisLocker)(nil)
)
