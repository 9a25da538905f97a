package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu     sync.Mutex
	owners map[string]memoryOwner
	now    func() time.Time
}

type memoryOwner struct {
	token   string
	expires time.Time
}

var _ Locker = (*MemoryLocker)(nil)

// NewMemoryLocker creates an empty locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		owners: make(map[string]memoryOwner),
		now:    time.Now,
	}
}

// Acquire implements Locker.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if o, ok := l.owners[key]; ok && now.Before(o.expires) {
		return nil, ErrHeld
	}

	token := uuid.NewString()
	l.owners[key] = memoryOwner{token: token, expires: now.Add(ttl)}
	return &memoryLease{locker: l, key: key, token: token}, nil
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
	token  string
}

func (m *memoryLease) Key() string { return m.key }

func (m *memoryLease) Refresh(ctx context.Context, ttl time.Duration) error {
	l := m.locker
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	o, ok := l.owners[m.key]
	if !ok || o.token != m.token || !now.Before(o.expires) {
		return ErrLost
	}
	l.owners[m.key] = memoryOwner{token: m.token, expires: now.Add(ttl)}
	return nil
}

func (m *memoryLease) Release(ctx context.Context) error {
	l := m.locker
	l.mu.Lock()
	defer l.mu.Unlock()

	if o, ok := l.owners[m.key]; ok && o.token == m.token {
		delete(l.owners, m.key)
	}
	return nil
}
