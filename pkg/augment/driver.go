package augment

import (
	"context"
	"fmt"

	"colcon-nix/pkg/descriptor"

	"golang.org/x/sync/errgroup"
)

// AugmentAll 对每个描述符依次应用其扩展点下的全部扩展
// 每个描述符只会被一个 goroutine 访问；parallel <= 0 表示不限制并发。
// 第一个错误会取消其余的调用。
func AugmentAll(ctx context.Context, reg *Registry, descs []*descriptor.Descriptor, parallel int) error {
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for _, desc := range descs {
		exts := reg.ForKind(desc.Kind)
		if len(exts) == 0 {
			continue
		}
		g.Go(func() error {
			for _, ext := range exts {
				if err := ext.Augmenter.Augment(ctx, desc); err != nil {
					return fmt.Errorf("%s.%s failed on %s: %w", ext.Point.Name, ext.Name, desc.Identifier(), err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}
