package augment

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/types"
)

var (
	ErrDuplicateExtension = errors.New("extension already registered")
	ErrUnknownPoint       = errors.New("unknown extension point")
)

// ExtensionPoint 描述一个扩展点及其当前版本
type ExtensionPoint struct {
	Name    string
	Version string
	Kind    descriptor.Kind // 该扩展点处理的描述符类型
}

var (
	PackageAugmentationPoint = ExtensionPoint{
		Name:    "package_augmentation",
		Version: "1.0",
		Kind:    descriptor.KindPackage,
	}
	RepositoryAugmentationPoint = ExtensionPoint{
		Name:    "repository_augmentation",
		Version: "1.0",
		Kind:    descriptor.KindRepository,
	}
)

// Points 返回所有已知的扩展点
func Points() []ExtensionPoint {
	return []ExtensionPoint{PackageAugmentationPoint, RepositoryAugmentationPoint}
}

// NarhashConstraint 是 narhash 扩展声明的兼容版本
const NarhashConstraint = "^1.0"

// ExtensionName 是两个 narhash 扩展注册的名字
const ExtensionName = "narhash"

// Extension 是注册表中的一项
type Extension struct {
	Name      string
	Point     ExtensionPoint
	Augmenter Augmenter
}

// Registry 是显式构造的扩展注册表，取代运行时插件扫描
type Registry struct {
	mu         sync.RWMutex
	extensions map[string]map[string]Extension // point name -> extension name -> extension
}

func NewRegistry() *Registry {
	r := &Registry{extensions: make(map[string]map[string]Extension)}
	for _, p := range Points() {
		r.extensions[p.Name] = make(map[string]Extension)
	}
	return r
}

// Register 在版本兼容的前提下注册扩展
func (r *Registry) Register(point ExtensionPoint, name string, aug Augmenter, constraint string) error {
	if err := SatisfiesVersion(point.Version, constraint); err != nil {
		return fmt.Errorf("cannot register %s.%s: %w", point.Name, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.extensions[point.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPoint, point.Name)
	}
	if _, exists := byName[name]; exists {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateExtension, point.Name, name)
	}
	byName[name] = Extension{Name: name, Point: point, Augmenter: aug}
	return nil
}

// Extensions 返回某个扩展点下按名字排序的扩展
func (r *Registry) Extensions(point ExtensionPoint) []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := r.extensions[point.Name]
	out := make([]Extension, 0, len(byName))
	for _, ext := range byName {
		out = append(out, ext)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ForKind 返回处理该类描述符的扩展
func (r *Registry) ForKind(kind descriptor.Kind) []Extension {
	for _, p := range Points() {
		if p.Kind == kind {
			return r.Extensions(p)
		}
	}
	return nil
}

// NewDefaultRegistry 注册包级与仓库级 narhash 扩展
func NewDefaultRegistry(h Hasher, algo types.Algorithm) (*Registry, error) {
	r := NewRegistry()
	if err := r.Register(PackageAugmentationPoint, ExtensionName, NewPackageAugmentation(h, algo), NarhashConstraint); err != nil {
		return nil, err
	}
	if err := r.Register(RepositoryAugmentationPoint, ExtensionName, NewRepositoryAugmentation(h, algo), NarhashConstraint); err != nil {
		return nil, err
	}
	return r, nil
}
