package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sheetpilot/pkg/adapters/memory"
	redisadapter "github.com/aretw0/sheetpilot/pkg/adapters/redis"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/aretw0/sheetpilot/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func TestManager_WithSessionSerializes(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithSession(ctx, "shared", func(ctx context.Context, s *domain.Session) error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				s.Clipboard.Cells = append(s.Clipboard.Cells, []any{"x"})
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak)
	s, err := manager.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, s.Clipboard.Cells, 8, "no update was lost")
}

func TestManager_WithSessionPersistsOnFailure(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	err := manager.WithSession(ctx, "s1", func(ctx context.Context, s *domain.Session) error {
		assert.Equal(t, "s1", domain.SessionIDFrom(ctx))
		s.Clipboard.Cells = [][]any{{"copied"}}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"copied"}}, s.Clipboard.Cells)
}

func TestManager_LoadOrStart(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()

	var wg sync.WaitGroup
	created := make([]time.Time, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := manager.LoadOrStart(ctx, "atomic-init")
			assert.NoError(t, err)
			created[i] = s.CreatedAt
		}(i)
	}
	wg.Wait()
	assert.True(t, created[0].Equal(created[1]), "both callers see the same session")

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"atomic-init"}, ids)
}

func TestManager_Delete(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, domain.NewSession("gone")))
	require.NoError(t, manager.Delete(ctx, "gone"))

	_, err := manager.Load(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
	fail     error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))
	ctx := context.Background()

	require.NoError(t, manager.WithSession(ctx, "abc", func(context.Context, *domain.Session) error { return nil }))
	require.NoError(t, manager.WithLock(ctx, ports.GridLockKey, func(context.Context) error { return nil }))

	assert.Equal(t, []string{"session:abc", ports.GridLockKey}, locker.keys)
	assert.Equal(t, 2, locker.released)

	locker.fail = errors.New("unavailable")
	err := manager.WithSession(ctx, "abc", func(context.Context, *domain.Session) error {
		t.Fatal("must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, locker.fail)
}

func TestManager_NoLockLeak(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = manager.Save(ctx, domain.NewSession(sid))
		_ = manager.Delete(ctx, sid)
	}
	assert.Zero(t, session.ActiveLocks(manager))
}

func TestManager_DistributedSessionOutlivesLockTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisadapter.NewFromClient(client)
	replica := func() *session.Manager {
		return session.NewManager(store,
			session.WithLocker(redisadapter.NewLocker(client, "test:")),
			session.WithLockTTL(300*time.Millisecond),
		)
	}
	a, b := replica(), replica()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- a.WithSession(ctx, "s1", func(ctx context.Context, s *domain.Session) error {
			close(entered)
			<-release
			s.Clipboard.Cells = [][]any{{"one"}}
			return nil
		})
	}()
	<-entered

	for i := 0; i < 5; i++ {
		mr.FastForward(200 * time.Millisecond)
		time.Sleep(150 * time.Millisecond)
	}

	blocked, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	err := b.WithSession(blocked, "s1", func(ctx context.Context, s *domain.Session) error {
		t.Error("second replica entered a session that is still held")
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, b.WithSession(ctx, "s1", func(ctx context.Context, s *domain.Session) error {
		assert.Equal(t, [][]any{{"one"}}, s.Clipboard.Cells)
		s.Clipboard.Cells = append(s.Clipboard.Cells, []any{"two"})
		return nil
	}))
	s, err := a.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"one"}, {"two"}}, s.Clipboard.Cells)
}
