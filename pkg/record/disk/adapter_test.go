package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(name string) record.Record {
	return record.Record{
		Kind:      descriptor.KindPackage,
		Name:      name,
		Type:      "cmake",
		Path:      "/ws/src/" + name,
		NarHash:   "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=",
		UpdatedAt: 1700000000,
	}
}

func TestDiskAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".colcon-nix", "narhash.json")
	store, err := NewAdapter(path)
	require.NoError(t, err)
	ctx := context.Background()

	// 1. 新建时不应创建任何文件
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// 2. Put
	require.NoError(t, store.Put(ctx, sampleRecord("b")))
	require.NoError(t, store.Put(ctx, sampleRecord("a")))
	_, err = os.Stat(path)
	assert.NoError(t, err, "Put 之后文件应该存在")

	// 3. Get
	rec, err := store.Get(ctx, descriptor.KindPackage, "a")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord("a"), rec)

	_, err = store.Get(ctx, descriptor.KindRepository, "a")
	assert.ErrorIs(t, err, record.ErrNotFound)

	// 4. 重新加载 (持久化检查)
	reloaded, err := NewAdapter(path)
	require.NoError(t, err)
	list, err := reloaded.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
}

func TestDiskAdapter_Upsert(t *testing.T) {
	store, err := NewAdapter(filepath.Join(t.TempDir(), "narhash.json"))
	require.NoError(t, err)
	ctx := context.Background()

	rec := sampleRecord("a")
	require.NoError(t, store.Put(ctx, rec))
	rec.Type = "python"
	require.NoError(t, store.Put(ctx, rec))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "python", list[0].Type)
}

func TestDiskAdapter_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narhash.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewAdapter(path)
	assert.Error(t, err)
}

func TestDiskAdapter_PutAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narhash.json")
	store, err := NewAdapter(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleRecord("a")))

	updated := sampleRecord("a")
	updated.Type = "python"
	require.NoError(t, store.PutAll(ctx, []record.Record{sampleRecord("c"), updated, sampleRecord("b")}))

	// 批量写入与逐条 Put 落盘结果一致
	reloaded, err := NewAdapter(path)
	require.NoError(t, err)
	list, err := reloaded.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].Name, list[1].Name, list[2].Name})
	assert.Equal(t, "python", list[0].Type)

	// 空批次不写盘
	require.NoError(t, store.PutAll(ctx, nil))
}

func TestDiskAdapter_PutAll_RollbackOnWriteFailure(t *testing.T) {
	// 父路径是普通文件，MkdirAll 必然失败
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	store, err := NewAdapter(filepath.Join(blocker, "narhash.json"))
	require.NoError(t, err)
	ctx := context.Background()

	err = store.PutAll(ctx, []record.Record{sampleRecord("a"), sampleRecord("b")})
	require.Error(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "写盘失败时内存状态应整体回滚")
}
