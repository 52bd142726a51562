package augment

import (
	"context"
	"fmt"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/types"
)

// MetadataKey 是 narhash 在 descriptor.Metadata 中的键
const MetadataKey = "narhash"

// DefaultAlgorithm 是请求外部工具使用的算法
const DefaultAlgorithm = types.SHA256

// Hasher 由 narhash.Hasher 实现
type Hasher interface {
	Compute(ctx context.Context, path string, algo types.Algorithm) (types.SRIHash, bool, error)
}

// Augmenter 是扩展点的固定签名
// 只有“缺少哈希工具”以外的失败才会作为 error 返回
type Augmenter interface {
	Augment(ctx context.Context, desc *descriptor.Descriptor) error
}

// narhashAugmentation 是包级与仓库级增强共享的逻辑
type narhashAugmentation struct {
	hasher Hasher
	algo   types.Algorithm
}

func (a narhashAugmentation) augment(ctx context.Context, desc *descriptor.Descriptor) error {
	// 1. 已经有值则跳过 (只写一次，永不覆盖)
	if desc.Metadata.Has(MetadataKey) {
		return nil
	}

	// 2. 调用外部工具
	sri, ok, err := a.hasher.Compute(ctx, desc.Path, a.algo)
	if err != nil {
		return fmt.Errorf("failed to compute narhash for %s: %w", desc.Path, err)
	}
	if !ok {
		// 工具不可用：Hasher 已经记录了日志，保持 key 缺失
		return nil
	}

	// 3. 写入
	if desc.Metadata == nil {
		desc.Metadata = descriptor.Metadata{}
	}
	desc.Metadata[MetadataKey] = sri.String()
	return nil
}

func newNarhashAugmentation(h Hasher, algo types.Algorithm) narhashAugmentation {
	if algo == "" {
		algo = DefaultAlgorithm
	}
	return narhashAugmentation{hasher: h, algo: algo}
}

// PackageAugmentation 用 narhash 增强包描述符
type PackageAugmentation struct {
	narhashAugmentation
}

func NewPackageAugmentation(h Hasher, algo types.Algorithm) *PackageAugmentation {
	return &PackageAugmentation{newNarhashAugmentation(h, algo)}
}

func (p *PackageAugmentation) Augment(ctx context.Context, desc *descriptor.Descriptor) error {
	return p.augment(ctx, desc)
}

// RepositoryAugmentation 用 narhash 增强仓库描述符
type RepositoryAugmentation struct {
	narhashAugmentation
}

func NewRepositoryAugmentation(h Hasher, algo types.Algorithm) *RepositoryAugmentation {
	return &RepositoryAugmentation{newNarhashAugmentation(h, algo)}
}

func (r *RepositoryAugmentation) Augment(ctx context.Context, desc *descriptor.Descriptor) error {
	return r.augment(ctx, desc)
}
