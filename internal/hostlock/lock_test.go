package hostlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	locker, err := NewRedisLocker("redis://"+s.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("failed to create redis locker: %v", err)
	}
	t.Cleanup(func() { _ = locker.Close() })
	return locker, s
}

func lockers(t *testing.T) map[string]Locker {
	redisLocker, _ := setupTestRedis(t)
	return map[string]Locker{
		"redis": redisLocker,
		"local": NewLocalLocker(),
	}
}

func TestAcquireIsExclusive(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			lease, err := l.Acquire(ctx, "ids-1", 0)
			if err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}

			_, err = l.Acquire(ctx, "ids-1", 0)
			var busy *BusyError
			if !errors.As(err, &busy) || busy.Host != "ids-1" || !errors.Is(err, ErrBusy) {
				t.Fatalf("second Acquire error = %v, want BusyError", err)
			}

			other, err := l.Acquire(ctx, "ids-2", 0)
			if err != nil {
				t.Fatalf("other host should be free: %v", err)
			}
			_ = other.Release(ctx)

			if err := lease.Release(ctx); err != nil {
				t.Fatalf("Release failed: %v", err)
			}
			if err := lease.Release(ctx); err != nil {
				t.Errorf("second Release failed: %v", err)
			}

			again, err := l.Acquire(ctx, "ids-1", 0)
			if err != nil {
				t.Fatalf("Acquire after release failed: %v", err)
			}
			_ = again.Release(ctx)
		})
	}
}

func TestAcquireWaitsForRelease(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			lease, err := l.Acquire(ctx, "ids", 0)
			if err != nil {
				t.Fatal(err)
			}
			go func() {
				time.Sleep(100 * time.Millisecond)
				_ = lease.Release(ctx)
			}()

			next, err := l.Acquire(ctx, "ids", 5*time.Second)
			if err != nil {
				t.Fatalf("waiting Acquire failed: %v", err)
			}
			_ = next.Release(ctx)
		})
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	lease, err := l.Acquire(context.Background(), "ids", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer lease.Release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(ctx, "ids", time.Minute); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
}

func TestRedisLeaseExpires(t *testing.T) {
	l, s := setupTestRedis(t)
	ctx := context.Background()
	if _, err := l.Acquire(ctx, "ids", 0); err != nil {
		t.Fatal(err)
	}

	s.FastForward(2 * time.Minute)

	lease, err := l.Acquire(ctx, "ids", 0)
	if err != nil {
		t.Fatalf("Acquire after expiry failed: %v", err)
	}
	_ = lease.Release(ctx)
}

func TestRedisReleaseKeepsForeignLease(t *testing.T) {
	l, s := setupTestRedis(t)
	ctx := context.Background()
	stale, err := l.Acquire(ctx, "ids", 0)
	if err != nil {
		t.Fatal(err)
	}

	// The stale lease expires and another holder takes over.
	s.FastForward(2 * time.Minute)
	current, err := l.Acquire(ctx, "ids", 0)
	if err != nil {
		t.Fatal(err)
	}
	holder, _ := l.holder(ctx, "ids")

	if err := stale.Release(ctx); err != nil {
		t.Fatalf("stale Release failed: %v", err)
	}
	if got, _ := l.holder(ctx, "ids"); got != holder || got == "" {
		t.Errorf("holder after stale release = %q, want %q", got, holder)
	}
	_ = current.Release(ctx)
	if got, _ := l.holder(ctx, "ids"); got != "" {
		t.Errorf("holder after release = %q, want empty", got)
	}
}

func TestNewRedisLockerBadURL(t *testing.T) {
	if _, err := NewRedisLocker("not a url", time.Minute); err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}

func TestRedisLeaseIsRenewedWhileHeld(t *testing.T) {
	s := miniredis.RunT(t)
	l, err := NewRedisLocker("redis://"+s.Addr(), 300*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	ctx := context.Background()
	key := l.key("ids")

	lease, err := l.Acquire(ctx, "ids", 0)
	if err != nil {
		t.Fatal(err)
	}

	// Only renewals can push the remaining TTL back above what is left
	// after fast-forwarding.
	for range 3 {
		s.FastForward(200 * time.Millisecond)
		deadline := time.Now().Add(2 * time.Second)
		for s.TTL(key) <= 150*time.Millisecond {
			if time.Now().After(deadline) {
				t.Fatalf("lease was not renewed; ttl = %v", s.TTL(key))
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	if !s.Exists(key) {
		t.Fatal("lease expired while held")
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if s.Exists(key) {
		t.Fatal("lease still held after release")
	}
	if _, err := l.Acquire(ctx, "ids", 0); err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
}

func TestRedisLeaseReportsLoss(t *testing.T) {
	s := miniredis.RunT(t)
	l, err := NewRedisLocker("redis://"+s.Addr(), 60*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	ctx := context.Background()

	lease, err := l.Acquire(ctx, "ids", 0)
	if err != nil {
		t.Fatal(err)
	}
	// Another process takes the host over behind our back.
	if err := s.Set(l.key("ids"), "intruder"); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !lease.(*redisLease).lost.Load() {
		if time.Now().After(deadline) {
			t.Fatal("renewal did not notice the lost lease")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := lease.Release(ctx); !errors.Is(err, ErrLost) {
		t.Fatalf("Release() error = %v, want ErrLost", err)
	}
	if got, _ := l.holder(ctx, "ids"); got != "intruder" {
		t.Errorf("holder = %q, want intruder", got)
	}
}

func TestNewRedisLockerUnreachable(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()
	if _, err := NewRedisLocker("redis://"+addr, time.Minute); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}
