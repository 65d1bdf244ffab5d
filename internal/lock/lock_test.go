package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLocalSerializesSameKey(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, 42)
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("expected at most one holder, saw %d", maxActive)
	}
	if n := l.held(); n != 0 {
		t.Errorf("expected no slots left, got %d", n)
	}
}

func TestLocalDifferentKeysIndependent(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	unlock1, err := l.Lock(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock2, err := l.Lock(ctx, 2)
		if err == nil {
			unlock2()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on key 2 blocked by key 1")
	}
}

func TestLocalContextCancel(t *testing.T) {
	l := NewLocal()

	unlock, err := l.Lock(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, 7); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock() // second call is a no-op

	if n := l.held(); n != 0 {
		t.Errorf("expected no slots left, got %d", n)
	}
}

func TestRedisKeyAndDefaults(t *testing.T) {
	r := NewRedis(nil, "", 0)
	if r.ttl != DefaultTTL {
		t.Errorf("expected default ttl, got %v", r.ttl)
	}
	if got := r.key(12); got != "foundit:item-lock:12" {
		t.Errorf("unexpected key %q", got)
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, NewRedis(rdb, "", time.Second)
}

func TestRedisLock(t *testing.T) {
	mr, r := newMiniRedis(t)
	ctx := context.Background()

	unlock, err := r.Lock(ctx, 7)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if !mr.Exists("foundit:item-lock:7") {
		t.Fatal("expected lock key to be set")
	}
	if ttl := mr.TTL("foundit:item-lock:7"); ttl <= 0 || ttl > time.Second {
		t.Errorf("expected ttl within 1s, got %v", ttl)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	if _, err := r.Lock(waitCtx, 7); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second lock to time out, got %v", err)
	}

	// Other ids are unaffected.
	unlockOther, err := r.Lock(ctx, 8)
	if err != nil {
		t.Fatalf("Lock other key: %v", err)
	}
	unlockOther()

	unlock()
	if mr.Exists("foundit:item-lock:7") {
		t.Error("expected key to be gone after release")
	}

	unlock2, err := r.Lock(ctx, 7)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	unlock2()
}

func TestRedisLockWaitsForRelease(t *testing.T) {
	_, r := newMiniRedis(t)
	ctx := context.Background()

	unlock, err := r.Lock(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := r.Lock(ctx, 3)
		if err != nil {
			t.Errorf("waiting Lock: %v", err)
			close(acquired)
			return
		}
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder got the lock while it was held")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never got the lock")
	}
}

func TestRedisReleaseKeepsNewHolder(t *testing.T) {
	mr, r := newMiniRedis(t)
	ctx := context.Background()

	unlock, err := r.Lock(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}

	// The first holder overruns its ttl and someone else takes the lock.
	mr.FastForward(2 * time.Second)
	unlock2, err := r.Lock(ctx, 5)
	if err != nil {
		t.Fatalf("Lock after expiry: %v", err)
	}
	token, _ := mr.Get("foundit:item-lock:5")

	unlock()
	if got, _ := mr.Get("foundit:item-lock:5"); got != token {
		t.Errorf("stale release removed the new holder's lock")
	}

	unlock2()
	if mr.Exists("foundit:item-lock:5") {
		t.Error("expected key to be gone after the new holder released")
	}
}
