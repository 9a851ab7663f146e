package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/netposter/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	g1 := k.GraphKey("g", "e1")
	g2 := k.GraphKey("g", "e2")
	if g1 == g2 {
		t.Error("GraphKey ignores the events hash")
	}
	if !strings.HasPrefix(g1, "graph:") {
		t.Errorf("GraphKey = %s, want graph: prefix", g1)
	}

	base := ArtifactKeyOpts{Format: "png", SettingsHash: "s1"}
	variants := []ArtifactKeyOpts{
		{Format: "jpeg", SettingsHash: "s1"},
		{Format: "png", SettingsHash: "s2"},
		{Format: "png", SettingsHash: "s1", Overlay: "tags"},
		{Format: "png", SettingsHash: "s1", Version: "v2"},
	}
	a := k.ArtifactKey(g1, base)
	if a != k.ArtifactKey(g1, base) {
		t.Error("ArtifactKey is not deterministic")
	}
	for _, v := range variants {
		if k.ArtifactKey(g1, v) == a {
			t.Errorf("ArtifactKey(%+v) collides with %+v", v, base)
		}
	}
	if k.ArtifactKey(g2, base) == a {
		t.Error("ArtifactKey ignores the graph key")
	}
}

func TestScope(t *testing.T) {
	tests := []struct {
		name  string
		inner Keyer
		scope string
		want  string
	}{
		{"explicit inner", NewDefaultKeyer(), "city", "city:"},
		{"nil inner", nil, "city", "city:"},
		{"empty scope", NewDefaultKeyer(), "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := Scope(tt.inner, tt.scope)
			want := tt.want + NewDefaultKeyer().GraphKey("g", "e")
			if got := k.GraphKey("g", "e"); got != want {
				t.Errorf("GraphKey = %s, want %s", got, want)
			}
			if got := k.ArtifactKey("g", ArtifactKeyOpts{}); !strings.HasPrefix(got, tt.want+"artifact:") {
				t.Errorf("ArtifactKey = %s, want %sartifact: prefix", got, tt.want)
			}
		})
	}
}

func TestKeyType(t *testing.T) {
	tests := map[string]string{
		"artifact:abc":      "artifact",
		"city:graph:abc":    "graph",
		"bare":              "unknown",
		"a:b:c:artifact:ff": "artifact",
	}
	for key, want := range tests {
		if got := keyType(key); got != want {
			t.Errorf("keyType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get on empty cache = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("poster"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "poster" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing entry: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("expired Get() = %v, %v; want miss", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := c.path("k")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt Get() = %v, %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(keep, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("Clear removed an unrelated file: %v", err)
	}
}

func TestFileCachePruneAndUsage(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "fresh", []byte("fresh"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("forever"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "stale", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	entries, size, err := c.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if entries != 3 || size <= 0 {
		t.Errorf("Usage() = %d, %d; want 3 entries", entries, size)
	}

	n, err := c.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if _, hit, _ := c.Get(ctx, "fresh"); !hit {
		t.Error("Prune removed a live entry")
	}
	if entries, _, _ := c.Usage(); entries != 2 {
		t.Errorf("Usage() after prune = %d, want 2", entries)
	}
}

func TestFileCacheMissingDir(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if n, err := c.Clear(); n != 0 || err != nil {
		t.Errorf("Clear() on missing dir = %d, %v", n, err)
	}
}

type recordingHooks struct {
	mu                 sync.Mutex
	hits, misses, sets []string
	bytes              int
}

func (h *recordingHooks) OnCacheHit(_ context.Context, kt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits = append(h.hits, kt)
}

func (h *recordingHooks) OnCacheMiss(_ context.Context, kt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses = append(h.misses, kt)
}

func (h *recordingHooks) OnCacheSet(_ context.Context, kt string, size int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets = append(h.sets, kt)
	h.bytes += size
}

func TestInstrument(t *testing.T) {
	h := &recordingHooks{}
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc)
	if Instrument(c) != c {
		t.Error("Instrument wrapped twice")
	}

	c.Get(ctx, "artifact:1")
	c.Set(ctx, "artifact:1", []byte("abcd"), 0)
	c.Get(ctx, "artifact:1")

	if len(h.misses) != 1 || len(h.hits) != 1 || len(h.sets) != 1 {
		t.Fatalf("hooks = %d misses, %d hits, %d sets", len(h.misses), len(h.hits), len(h.sets))
	}
	if h.hits[0] != "artifact" || h.bytes != 4 {
		t.Errorf("hit type = %q, bytes = %d", h.hits[0], h.bytes)
	}
	if Instrument(nil) != nil {
		t.Error("Instrument(nil) != nil")
	}
}

func TestRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache("http://localhost"); err == nil {
		t.Error("NewRedisCache accepted a non-redis URL")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	old := defaultBackoff
	defaultBackoff = Backoff{Attempts: 2, Delay: time.Millisecond}
	t.Cleanup(func() { defaultBackoff = old })

	c, err := NewRedisCache("redis://127.0.0.1:1/0")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, hit, err := c.Get(ctx, "k"); err == nil || hit {
		t.Errorf("Get() on unreachable server = %v, %v; want error", hit, err)
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("Ping() on unreachable server succeeded")
	}
}

func TestBackoff(t *testing.T) {
	b := Backoff{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"permanent", 5, false, 1, true},
		{"transient", 1, true, 2, false},
		{"exhausted", 5, true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Do(ctx, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(ErrUnavailable)
					}
					return ErrUnavailable
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffZeroAttempts(t *testing.T) {
	calls := 0
	_ = Backoff{}.Do(context.Background(), func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := Backoff{Attempts: 3, Delay: time.Hour}
	err := b.Do(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) || err.Error() != ErrUnavailable.Error() {
		t.Errorf("Retryable(ErrUnavailable) = %v", err)
	}
	if !IsRetryable(fmt.Errorf("get: %w", err)) {
		t.Error("wrapped retryable error not detected")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("bare error reported as retryable")
	}
}
