package record

import (
	"context"
	"errors"
	"fmt"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/types"
)

var ErrNotFound = errors.New("record not found")

// Store 持久化增强结果
// 实现可以是本地 JSON 文件、SQL 数据库或对象存储。
type Store interface {
	// Put 按 (Kind, Name) 插入或覆盖
	Put(ctx context.Context, rec Record) error

	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context, kind descriptor.Kind, name string) (Record, error)

	// List 返回按 Key 排序的全部记录
	List(ctx context.Context) ([]Record, error)
}

// BatchStore 由能一次写入多条记录的后端实现 (例如单文件 JSON 只需写一次盘)
type BatchStore interface {
	PutAll(ctx context.Context, recs []Record) error
}

// NarHashFinder 由能按哈希直接查询的后端实现 (例如带索引的 SQL)
type NarHashFinder interface {
	FindByNarHash(ctx context.Context, h types.SRIHash) ([]Record, error)
}

// PutAll 优先走后端的批量写入，否则逐条 Put
func PutAll(ctx context.Context, s Store, recs []Record) error {
	if b, ok := s.(BatchStore); ok {
		return b.PutAll(ctx, recs)
	}
	for _, rec := range recs {
		if err := s.Put(ctx, rec); err != nil {
			return fmt.Errorf("failed to persist %s: %w", rec.Key(), err)
		}
	}
	return nil
}

// FindByNarHash 返回具有给定哈希的记录，按 Key 排序
// 后端不支持直接查询时退化为扫描 List
func FindByNarHash(ctx context.Context, s Store, h types.SRIHash) ([]Record, error) {
	if f, ok := s.(NarHashFinder); ok {
		return f.FindByNarHash(ctx, h)
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range all {
		if rec.NarHash == h {
			out = append(out, rec)
		}
	}
	Sort(out)
	return out, nil
}
