package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errFlaky = errors.New("flaky")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("empty cache reported a hit")
	}
	if err := c.Set(ctx, "a", []byte("png"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "png" {
		t.Errorf("Get(a) = %q, %v, %v, want png, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("deleted key still present")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry reported a hit")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("entry survived Clear")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.ImageKey("abc", ImageKeyOpts{Format: "png", DPI: 96})
	k2 := k.ImageKey("abc", ImageKeyOpts{Format: "png", DPI: 144})
	if k1 == k2 {
		t.Error("Different ImageKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(k1, "image:") {
		t.Errorf("ImageKey = %q, want image: prefix", k1)
	}
	if k1 != k.ImageKey("abc", ImageKeyOpts{Format: "png", DPI: 96}) {
		t.Error("ImageKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "catalog:123:")
	key := scoped.ImageKey("abc", ImageKeyOpts{})
	if !strings.HasPrefix(key, "catalog:123:image:") {
		t.Errorf("ScopedKeyer ImageKey should be prefixed: %s", key)
	}

	// nil inner falls back to DefaultKeyer
	if got := NewScopedKeyer(nil, "p:").ImageKey("abc", ImageKeyOpts{}); got != "p:"+key[len("catalog:123:"):] {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errFlaky)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errFlaky.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(errFlaky) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
	if !errors.Is(err, errFlaky) {
		t.Error("Retryable should unwrap to the cause")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retry(ctx, time.Millisecond, func() error {
		calls++
		return errFlaky
	})
	if err != errFlaky || calls != 1 {
		t.Errorf("non-retryable: err = %v, calls = %d, want errFlaky, 1", err, calls)
	}

	calls = 0
	err = retry(ctx, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return Retryable(errFlaky)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err = %v, calls = %d, want nil, 2", err, calls)
	}

	calls = 0
	err = retry(ctx, time.Millisecond, func() error {
		calls++
		return Retryable(errFlaky)
	})
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err = %v, calls = %d, want retryable, 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errFlaky)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://nope", "nodedocs:"); err == nil {
		t.Error("NewRedisCache(http://) error = nil")
	}
}
