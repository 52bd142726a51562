package disk

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/record"
)

// Adapter 实现了 record.Store 接口
// 所有记录保存在一个 JSON 文件中 (例如 .colcon-nix/narhash.json)
type Adapter struct {
	path string

	mu      sync.RWMutex
	Records map[string]record.Record `json:"records"`
}

// NewAdapter 加载已有文件；文件不存在时从空开始
// 目录会在第一次写入时才创建
func NewAdapter(path string) (*Adapter, error) {
	a := &Adapter{
		path:    path,
		Records: make(map[string]record.Record),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("corrupted record file %s: %w", path, err)
	}
	if a.Records == nil {
		a.Records = make(map[string]record.Record)
	}
	return a, nil
}

func (a *Adapter) Put(ctx context.Context, rec record.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev, had := a.Records[rec.Key()]
	a.Records[rec.Key()] = rec
	if err := a.save(); err != nil {
		// 写盘失败时回滚内存状态
		if had {
			a.Records[rec.Key()] = prev
		} else {
			delete(a.Records, rec.Key())
		}
		return err
	}
	return nil
}

// PutAll 批量写入，只落盘一次；失败时整体回滚
func (a *Adapter) PutAll(ctx context.Context, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	prev := make(map[string]record.Record, len(a.Records))
	for k, v := range a.Records {
		prev[k] = v
	}
	for _, rec := range recs {
		a.Records[rec.Key()] = rec
	}
	if err := a.save(); err != nil {
		a.Records = prev
		return err
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, kind descriptor.Kind, name string) (record.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rec, ok := a.Records[record.Key(kind, name)]
	if !ok {
		return record.Record{}, record.ErrNotFound
	}
	return rec, nil
}

func (a *Adapter) List(ctx context.Context) ([]record.Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]record.Record, 0, len(a.Records))
	for _, rec := range a.Records {
		out = append(out, rec)
	}
	record.Sort(out)
	return out, nil
}

// save 原子写入：先写临时文件再 Rename
// 调用方必须持有写锁
func (a *Adapter) save() error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create record dir: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "narhash-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	return os.Rename(tempFile.Name(), a.path)
}
