package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestDefaultCacheConfig(t *testing.T) {
	config := DefaultCacheConfig()

	if config.Addr != "localhost:6379" {
		t.Errorf("Expected Addr to be localhost:6379, got %s", config.Addr)
	}

	if config.PoolSize != 10 {
		t.Errorf("Expected PoolSize to be 10, got %d", config.PoolSize)
	}

	if config.MinIdleConns != 5 {
		t.Errorf("Expected MinIdleConns to be 5, got %d", config.MinIdleConns)
	}

	if config.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries to be 3, got %d", config.MaxRetries)
	}

	if config.DialTimeout != 5*time.Second {
		t.Errorf("Expected DialTimeout to be 5s, got %v", config.DialTimeout)
	}

	if config.Prefix != "godolist:" {
		t.Errorf("Expected Prefix to be godolist:, got %s", config.Prefix)
	}
}

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	config := DefaultCacheConfig()
	config.Addr = mr.Addr()
	config.MaxRetries = 0

	cache := NewRedisCache(config)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestNewRedisCache_WithNilConfig(t *testing.T) {
	cache := NewRedisCache(nil)
	defer cache.Close()

	if cache.client == nil {
		t.Error("Expected Redis client to be initialized")
	}
	if cache.prefix != "godolist:" {
		t.Errorf("Expected default prefix, got %q", cache.prefix)
	}
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	type testData struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	original := testData{Name: "test", Value: 42}
	key := "tasks:all"

	if err := cache.Set(ctx, key, original, time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	if !mr.Exists("godolist:tasks:all") {
		t.Error("Expected key to be stored with the prefix")
	}

	var retrieved testData
	if err := cache.Get(ctx, key, &retrieved); err != nil {
		t.Fatalf("Failed to get from cache: %v", err)
	}

	if retrieved != original {
		t.Errorf("Expected %+v, got %+v", original, retrieved)
	}
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", "data", time.Second); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	mr.FastForward(2 * time.Second)

	var result string
	if err := cache.Get(ctx, "short", &result); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestRedisCache_Get_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	var result string
	err := cache.Get(context.Background(), "non-existent-key", &result)

	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_Set_InvalidData(t *testing.T) {
	cache, _ := setupTestRedis(t)

	ch := make(chan int)
	err := cache.Set(context.Background(), "test:key", ch, time.Minute)

	if err == nil {
		t.Error("Expected error when setting unmarshalable data")
	}
}

func TestRedisCache_Get_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)

	mr.Set("godolist:test:invalid", "invalid-json")

	var result map[string]interface{}
	err := cache.Get(context.Background(), "test:invalid", &result)

	if err == nil {
		t.Error("Expected error when getting invalid JSON")
	}
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if err := cache.Set(ctx, key, "data", time.Minute); err != nil {
			t.Fatalf("Failed to set cache: %v", err)
		}
	}

	if err := cache.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Failed to delete from cache: %v", err)
	}

	var retrieved string
	for _, key := range []string{"a", "b"} {
		if err := cache.Get(ctx, key, &retrieved); err != ErrCacheMiss {
			t.Errorf("Expected ErrCacheMiss after delete of %s, got %v", key, err)
		}
	}

	if err := cache.Delete(ctx); err != nil {
		t.Errorf("Expected deleting no keys to succeed, got %v", err)
	}
}

func TestRedisCache_DeletePattern(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("unrelated:tasks:1", "keep")

	keys := []string{"tasks:folder:1", "tasks:folder:2", "tasks:all", "folders:all"}
	for _, key := range keys {
		if err := cache.Set(ctx, key, "data", time.Minute); err != nil {
			t.Fatalf("Failed to set cache key %s: %v", key, err)
		}
	}

	if err := cache.DeletePattern(ctx, "tasks:*"); err != nil {
		t.Fatalf("Failed to delete pattern: %v", err)
	}

	var result string
	for _, key := range keys[:3] {
		if err := cache.Get(ctx, key, &result); err != ErrCacheMiss {
			t.Errorf("Expected key %s to be deleted, but got: %v", key, err)
		}
	}

	if err := cache.Get(ctx, "folders:all", &result); err != nil {
		t.Errorf("Expected key folders:all to still exist, got: %v", err)
	}
	if !mr.Exists("unrelated:tasks:1") {
		t.Error("Expected keys outside the prefix to be untouched")
	}
}

func TestRedisCache_Health(t *testing.T) {
	cache, mr := setupTestRedis(t)

	if err := cache.Health(context.Background()); err != nil {
		t.Errorf("Expected healthy cache, got error: %v", err)
	}

	mr.Close()

	err := cache.Health(context.Background())
	if !errors.Is(err, ErrCacheDown) {
		t.Errorf("Expected ErrCacheDown after closing Redis, got %v", err)
	}
}

func TestRedisCache_Stats(t *testing.T) {
	cache, _ := setupTestRedis(t)

	stats := cache.Stats()

	for _, key := range []string{"pool_hits", "pool_misses", "pool_total", "pool_idle"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("Expected stats to contain %s", key)
		}
	}
}

func TestRedisCache_Close(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(&CacheConfig{Addr: mr.Addr()})

	if err := cache.Close(); err != nil {
		t.Errorf("Failed to close cache: %v", err)
	}

	if err := cache.Set(context.Background(), "test", "data", time.Minute); err == nil {
		t.Error("Expected error when using cache after close")
	}
}

func BenchmarkRedisCache_Get(b *testing.B) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		b.Fatal(err)
	}
	defer mr.Close()

	cache := NewRedisCache(&CacheConfig{Addr: mr.Addr()})
	defer cache.Close()
	ctx := context.Background()

	data := map[string]string{"key": "value"}
	if err := cache.Set(ctx, "benchmark:key", data, time.Minute); err != nil {
		b.Fatalf("Failed to set cache: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var result map[string]string
		if err := cache.Get(ctx, "benchmark:key", &result); err != nil {
			b.Fatalf("Failed to get cache: %v", err)
		}
	}
}

func TestErrCacheMiss(t *testing.T) {
	if ErrCacheMiss.Error() != "cache miss" {
		t.Errorf("Expected ErrCacheMiss message to be 'cache miss', got '%s'", ErrCacheMiss.Error())
	}
}
