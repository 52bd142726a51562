package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"colcon-nix/pkg/descriptor"
)

// IgnoreMarker 放在目录中表示跳过整个子树
const IgnoreMarker = "COLCON_IGNORE"

// RepositoryType 是仓库描述符的类型
const RepositoryType = "git"

// ErrDuplicateName 表示两个描述符的 kind/name 相同 (路径不同)
var ErrDuplicateName = errors.New("duplicate descriptor name")

// Discover 遍历工作空间，返回仓库描述符 (在前) 与包描述符，各自按路径排序
func Discover(root string) ([]*descriptor.Descriptor, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid workspace: %s is not a directory", absRoot)
	}

	matcher, err := NewMatcher(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", IgnoreFile, err)
	}

	var repos, pkgs []*descriptor.Descriptor

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// 只关心目录；标记文件通过 Stat 检查
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && matcher.Matches(rel) {
			return filepath.SkipDir
		}
		if fileExists(filepath.Join(path, IgnoreMarker)) {
			return filepath.SkipDir
		}

		// 1. 仓库：包含 .git (目录或 worktree 文件)
		if fileExists(filepath.Join(path, ".git")) {
			repos = append(repos, descriptor.New(descriptor.KindRepository, filepath.Base(path), RepositoryType, path))
		}

		// 2. 包：找到后不再向下遍历
		pkg, err := identifyPackage(path)
		if err != nil {
			return err
		}
		if pkg != nil {
			pkgs = append(pkgs, pkg)
			return filepath.SkipDir
		}
		return nil
	}

	if err := filepath.WalkDir(absRoot, walkFn); err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	sortByPath(repos)
	sortByPath(pkgs)
	descs := append(repos, pkgs...)
	if err := checkUnique(descs); err != nil {
		return nil, err
	}
	return descs, nil
}

// checkUnique 记录以 kind/name 为键，同名描述符会互相覆盖，直接拒绝
func checkUnique(descs []*descriptor.Descriptor) error {
	seen := make(map[string]string, len(descs))
	for _, d := range descs {
		id := d.Identifier()
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s found at %s and %s", ErrDuplicateName, id, prev, d.Path)
		}
		seen[id] = d.Path
	}
	return nil
}

func sortByPath(descs []*descriptor.Descriptor) {
	sort.Slice(descs, func(i, j int) bool { return descs[i].Path < descs[j].Path })
}
