package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"colcon-nix/pkg/augment"
	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/narhash"
	"colcon-nix/pkg/record"
	"colcon-nix/pkg/record/cache"
	"colcon-nix/pkg/record/disk"
	"colcon-nix/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sriPattern = regexp.MustCompile(`^sha256-[A-Za-z0-9+/]+=*$`)

// MetricStore 组合真正的 Store，只统计 Get 被调用的次数
type MetricStore struct {
	record.Store
	getCount int32
}

func (m *MetricStore) Get(ctx context.Context, kind descriptor.Kind, name string) (record.Record, error) {
	atomic.AddInt32(&m.getCount, 1)
	return m.Store.Get(ctx, kind, name)
}

// TestWorkflow_RealNixHash 验证完整链路：
// 真实 nix-hash -> 增强 -> 持久化到磁盘 -> Redis 缓存命中
func TestWorkflow_RealNixHash(t *testing.T) {
	// 1. 基础设施准备
	// -------------------------------------------------------------
	tool, err := exec.LookPath(narhash.DefaultLegacyExecutable)
	if err != nil {
		t.Skip("Skipping E2E test: nix-hash not available")
	}
	redisAddr := "localhost:6379"
	if conn, err := net.DialTimeout("tcp", redisAddr, 1*time.Second); err != nil {
		t.Skip("Skipping E2E test: Redis not available")
	} else {
		conn.Close()
	}

	ctx := context.Background()
	ws := t.TempDir()
	pkgDir := filepath.Join(ws, "src", fmt.Sprintf("e2e_%d", time.Now().UnixNano()))
	require.NoError(t, os.MkdirAll(pkgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "CMakeLists.txt"), []byte("project(e2e)\n"), 0644))
	pkgName := filepath.Base(pkgDir)

	diskStore, err := disk.NewAdapter(filepath.Join(t.TempDir(), "narhash.json"))
	require.NoError(t, err)
	spy := &MetricStore{Store: diskStore}

	cachedStore, err := cache.NewCachedStore(spy, cache.Config{
		RedisURL: fmt.Sprintf("redis://%s/0", redisAddr),
		TTL:      time.Minute,
	})
	require.NoError(t, err)
	defer cachedStore.Close()

	h, err := narhash.NewHasher(narhash.Config{Executable: tool})
	require.NoError(t, err)
	reg, err := augment.NewDefaultRegistry(h, types.SHA256)
	require.NoError(t, err)

	application := &App{
		Logger:    zap.NewNop(),
		Hasher:    h,
		Registry:  reg,
		Store:     cachedStore,
		Algorithm: types.SHA256,
		Parallel:  2,
	}

	// 2. 增强并持久化
	// -------------------------------------------------------------
	descs, err := application.AugmentWorkspace(ctx, ws)
	require.NoError(t, err)
	require.Len(t, descs, 1)

	value, ok := descs[0].Metadata.String(augment.MetadataKey)
	require.True(t, ok)
	assert.Regexp(t, sriPattern, value)

	// 3. base64 -> hex 与工具直接输出一致
	// -------------------------------------------------------------
	out, err := exec.Command(tool, "--type", "sha256", pkgDir).Output()
	require.NoError(t, err)
	hex, err := narhash.Hex(types.SRIHash(value))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(string(out)), hex)

	// 4. Put 已经写入缓存，读取不应该落到底层存储
	// -------------------------------------------------------------
	for i := 0; i < 2; i++ {
		rec, err := application.Store.Get(ctx, descriptor.KindPackage, pkgName)
		require.NoError(t, err)
		assert.Equal(t, types.SRIHash(value), rec.NarHash)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&spy.getCount), "reads should be served from Redis")

	// 5. 再次增强不会覆盖已有的值
	// -------------------------------------------------------------
	descs[0].Metadata[augment.MetadataKey] = "sha256-X"
	require.NoError(t, augment.AugmentAll(ctx, reg, descs, 1))
	assert.Equal(t, "sha256-X", descs[0].Metadata[augment.MetadataKey])
}
