package cache

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/record"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// -----------------------------------------------------------------------------
// SpyStore (间谍存储)
// 统计底层方法被调用的次数，验证请求是否穿透了缓存
// -----------------------------------------------------------------------------
type SpyStore struct {
	mu       sync.Mutex
	getCount int32
	putCount int32
	records  map[string]record.Record
}

func NewSpyStore() *SpyStore {
	return &SpyStore{records: make(map[string]record.Record)}
}

func (s *SpyStore) Get(_ context.Context, kind descriptor.Kind, name string) (record.Record, error) {
	atomic.AddInt32(&s.getCount, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[record.Key(kind, name)]
	if !ok {
		return record.Record{}, record.ErrNotFound
	}
	return rec, nil
}

func (s *SpyStore) Put(_ context.Context, rec record.Record) error {
	atomic.AddInt32(&s.putCount, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key()] = rec
	return nil
}

func (s *SpyStore) List(context.Context) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	record.Sort(out)
	return out, nil
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "colcon-nix:record:package/demo", cacheKey(descriptor.KindPackage, "demo"))
}

func TestNewCachedStore_InvalidURL(t *testing.T) {
	_, err := NewCachedStore(NewSpyStore(), Config{RedisURL: "http://not-redis"})
	assert.ErrorContains(t, err, "invalid redis url")
}

func TestCachedStore_RedisDown(t *testing.T) {
	// 指向一个没人监听的端口：所有 Redis 操作失败，但 Get/Put 仍应成功
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	spy := NewSpyStore()
	store := NewWithClient(spy, client, time.Minute, WithLogger(zap.New(core)))
	ctx := context.Background()

	rec := record.Record{Kind: descriptor.KindPackage, Name: "demo"}
	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, descriptor.KindPackage, "demo")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&spy.getCount))

	_, err = store.Get(ctx, descriptor.KindPackage, "missing")
	assert.ErrorIs(t, err, record.ErrNotFound)

	// Redis 故障写入注入的 logger，而不是全局 logger
	assert.Positive(t, logs.FilterMessage("redis set failed").Len())
	assert.Positive(t, logs.FilterMessage("redis get failed, falling back to backend").Len())
}

func TestCachedStore_BatchAndFind(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	spy := NewSpyStore()
	store := NewWithClient(spy, client, time.Minute)
	ctx := context.Background()

	const sri = "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="
	require.NoError(t, store.PutAll(ctx, []record.Record{
		{Kind: descriptor.KindPackage, Name: "a", NarHash: sri},
		{Kind: descriptor.KindPackage, Name: "b"},
	}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&spy.putCount))

	found, err := store.FindByNarHash(ctx, sri)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].Name)
}

func TestCachedStore_Integration(t *testing.T) {
	redisAddr := "localhost:6379"
	conn, err := net.DialTimeout("tcp", redisAddr, 1*time.Second)
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	conn.Close()

	ctx := context.Background()
	spy := NewSpyStore()
	store, err := NewCachedStore(spy, Config{
		RedisURL: fmt.Sprintf("redis://%s/0", redisAddr),
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	defer store.Close()

	rec := record.Record{
		Kind:    descriptor.KindPackage,
		Name:    fmt.Sprintf("demo-%d", time.Now().UnixNano()),
		NarHash: "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=",
	}
	store.client.Del(ctx, cacheKey(rec.Kind, rec.Name))

	// --- Put (Write-Through) ---
	require.NoError(t, store.Put(ctx, rec))
	assert.Equal(t, int32(1), atomic.LoadInt32(&spy.putCount))

	// --- Cache Hit ---
	got, err := store.Get(ctx, rec.Kind, rec.Name)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, int32(0), atomic.LoadInt32(&spy.getCount), "命中缓存时不应访问底层存储")
}
