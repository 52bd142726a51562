// pkg/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"colcon-nix/pkg/augment"
	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/discovery"
	"colcon-nix/pkg/logging"
	"colcon-nix/pkg/narhash"
	"colcon-nix/pkg/record"
	"colcon-nix/pkg/record/cache"
	"colcon-nix/pkg/record/disk"
	"colcon-nix/pkg/record/meta"
	"colcon-nix/pkg/record/s3"
	"colcon-nix/pkg/types"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// App 是整个应用程序的依赖容器
type App struct {
	Logger    *zap.Logger
	Hasher    *narhash.Hasher
	Registry  *augment.Registry
	Store     record.Store
	Algorithm types.Algorithm
	Parallel  int
}

// NewApp 按 Viper 配置组装依赖，但不知道具体的 CLI 命令
func NewApp(ctx context.Context) (*App, error) {
	// 1. 日志
	logger, err := logging.New(logging.Config{
		Level: viper.GetString("log.level"),
		JSON:  viper.GetBool("log.json"),
	})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	// 2. 哈希工具与扩展注册表
	hasher, algo, err := initHasher(logger.Sugar())
	if err != nil {
		return nil, err
	}
	registry, err := augment.NewDefaultRegistry(hasher, algo)
	if err != nil {
		return nil, fmt.Errorf("failed to register extensions: %w", err)
	}

	// 3. 存储层，相对路径以当前目录为根
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	store, err := initStore(ctx, wd, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	return &App{
		Logger:    logger,
		Hasher:    hasher,
		Registry:  registry,
		Store:     store,
		Algorithm: algo,
		Parallel:  viper.GetInt("augment.parallel"),
	}, nil
}

func initHasher(log narhash.Logger) (*narhash.Hasher, types.Algorithm, error) {
	algo := types.Algorithm(viper.GetString("hasher.algorithm"))
	if !algo.IsValid() {
		return nil, "", fmt.Errorf("%w: %q", narhash.ErrUnsupportedAlgorithm, algo)
	}

	hasher, err := narhash.NewHasher(narhash.Config{
		Executable: viper.GetString("hasher.executable"),
		Command:    narhash.Command(viper.GetString("hasher.command")),
	}, narhash.WithLogger(log))
	if err != nil {
		return nil, "", err
	}
	return hasher, algo, nil
}

// initStore 根据 store.type 选择后端，配置了 cache.redis_url 时再包一层缓存
func initStore(ctx context.Context, root string, log *zap.Logger) (record.Store, error) {
	var store record.Store

	switch storeType := viper.GetString("store.type"); storeType {
	case "disk", "":
		adapter, err := disk.NewAdapter(resolve(root, viper.GetString("store.path")))
		if err != nil {
			return nil, err
		}
		store = adapter

	case "sql":
		driver := viper.GetString("store.sql.driver")
		dsn := viper.GetString("store.sql.dsn")
		if driver == "sqlite" {
			dsn = resolve(root, dsn)
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, err
			}
		}
		db, err := meta.NewDB(ctx, meta.Config{
			Driver: driver,
			DSN:    dsn,
			Debug:  viper.GetString("log.level") == "debug",
		})
		if err != nil {
			return nil, err
		}
		store = meta.NewRepository(db)

	case "s3":
		cfg := s3.Config{
			Endpoint:        viper.GetString("store.s3.endpoint"),
			Region:          viper.GetString("store.s3.region"),
			Bucket:          viper.GetString("store.s3.bucket"),
			Prefix:          viper.GetString("store.s3.prefix"),
			AccessKeyID:     viper.GetString("store.s3.access_key"),
			SecretAccessKey: viper.GetString("store.s3.secret_key"),
		}
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 bucket is required (store.s3.bucket)")
		}
		adapter, err := s3.NewAdapter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := adapter.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		store = adapter

	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}

	if redisURL := viper.GetString("cache.redis_url"); redisURL != "" {
		cached, err := cache.NewCachedStore(store, cache.Config{
			RedisURL: redisURL,
			TTL:      viper.GetDuration("cache.ttl"),
		}, cache.WithLogger(log))
		if err != nil {
			return nil, err
		}
		store = cached
	}

	return store, nil
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// AugmentWorkspace 发现工作空间中的仓库与包，增强并持久化
func (a *App) AugmentWorkspace(ctx context.Context, root string) ([]*descriptor.Descriptor, error) {
	descs, err := discovery.Discover(root)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("discovered descriptors", zap.String("root", root), zap.Int("count", len(descs)))

	if err := augment.AugmentAll(ctx, a.Registry, descs, a.Parallel); err != nil {
		return nil, err
	}

	now := time.Now()
	recs := make([]record.Record, 0, len(descs))
	for _, d := range descs {
		recs = append(recs, record.FromDescriptor(d, now))
	}
	if err := record.PutAll(ctx, a.Store, recs); err != nil {
		return nil, fmt.Errorf("failed to persist records: %w", err)
	}
	return descs, nil
}

// Close 释放存储连接并刷新日志
func (a *App) Close() error {
	var err error
	if closer, ok := a.Store.(io.Closer); ok {
		err = closer.Close()
	}
	if a.Logger != nil {
		// stderr 上的 Sync 可能返回 EINVAL，忽略
		_ = a.Logger.Sync()
	}
	return err
}
