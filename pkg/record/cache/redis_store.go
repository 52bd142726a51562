package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/record"
	"colcon-nix/pkg/types"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStore 是一个装饰器，为底层 record.Store 的 Get 加一层 Redis 缓存
type CachedStore struct {
	backend record.Store
	client  *redis.Client
	ttl     time.Duration
	log     *zap.SugaredLogger
}

type Config struct {
	RedisURL string        // redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 0 表示永不过期
}

// Option 配置 CachedStore
type Option func(*CachedStore)

// WithLogger 注入日志实现，默认是 no-op
func WithLogger(l *zap.Logger) Option {
	return func(s *CachedStore) {
		if l != nil {
			s.log = l.Sugar()
		}
	}
}

func NewCachedStore(backend record.Store, cfg Config, opts ...Option) (*CachedStore, error) {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(backend, client, cfg.TTL, opts...), nil
}

// NewWithClient 使用现有的 Redis 客户端
func NewWithClient(backend record.Store, client *redis.Client, ttl time.Duration, opts ...Option) *CachedStore {
	s := &CachedStore{
		backend: backend,
		client:  client,
		ttl:     ttl,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cacheKey 添加前缀防止冲突
func cacheKey(kind descriptor.Kind, name string) string {
	return "colcon-nix:record:" + record.Key(kind, name)
}

// Get 优先查 Redis；Redis 故障时降级为直接查底层存储
func (s *CachedStore) Get(ctx context.Context, kind descriptor.Kind, name string) (record.Record, error) {
	key := cacheKey(kind, name)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		rec, decErr := record.Unmarshal(data)
		if decErr == nil {
			return rec, nil
		}
		s.log.Warnw("discarding undecodable cache entry", "key", key, "error", decErr)
	case !errors.Is(err, redis.Nil):
		s.log.Warnw("redis get failed, falling back to backend", "key", key, "error", err)
	}

	rec, err := s.backend.Get(ctx, kind, name)
	if err != nil {
		return record.Record{}, err
	}
	s.fill(ctx, rec)
	return rec, nil
}

// Put 先写底层存储，成功后再更新缓存
func (s *CachedStore) Put(ctx context.Context, rec record.Record) error {
	if err := s.backend.Put(ctx, rec); err != nil {
		return err
	}
	s.fill(ctx, rec)
	return nil
}

// PutAll 批量写底层存储，成功后逐条更新缓存
func (s *CachedStore) PutAll(ctx context.Context, recs []record.Record) error {
	if err := record.PutAll(ctx, s.backend, recs); err != nil {
		return err
	}
	for _, rec := range recs {
		s.fill(ctx, rec)
	}
	return nil
}

// FindByNarHash 透传给底层存储
func (s *CachedStore) FindByNarHash(ctx context.Context, h types.SRIHash) ([]record.Record, error) {
	return record.FindByNarHash(ctx, s.backend, h)
}

// List 透传，不缓存
func (s *CachedStore) List(ctx context.Context) ([]record.Record, error) {
	return s.backend.List(ctx)
}

// Close 关闭 Redis 连接以及可关闭的底层存储
func (s *CachedStore) Close() error {
	err := s.client.Close()
	if closer, ok := s.backend.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}

// fill 写缓存；失败不影响主流程
func (s *CachedStore) fill(ctx context.Context, rec record.Record) {
	data, err := record.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey(rec.Kind, rec.Name), data, s.ttl).Err(); err != nil {
		s.log.Warnw("redis set failed", "key", rec.Key(), "error", err)
	}
}
