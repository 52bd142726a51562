package augment

import (
	"context"
	"sync"
	"sync/atomic"

	"colcon-nix/pkg/types"
)

// stubHasher 按路径返回预设结果，并统计调用次数
type stubHasher struct {
	mu      sync.Mutex
	results map[string]types.SRIHash
	missing bool  // 模拟工具不存在
	err     error // 模拟其他失败
	calls   atomic.Int32
	algos   []types.Algorithm
}

func (s *stubHasher) Compute(_ context.Context, path string, algo types.Algorithm) (types.SRIHash, bool, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.algos = append(s.algos, algo)
	s.mu.Unlock()

	if s.err != nil {
		return "", false, s.err
	}
	if s.missing {
		return "", false, nil
	}
	return s.results[path], true, nil
}

const emptySRI = types.SRIHash("sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=")
