package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	narhashrpc "colcon-nix/pkg/api/narhashrpc/v1"
	"colcon-nix/pkg/app"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type NarhashService struct {
	narhashrpc.UnimplementedNarhashServiceServer
	app *app.App

	// 客户端只能访问 root 之下的路径
	// rootAbs 是配置值的绝对路径，root 是解析符号链接之后的真实路径
	rootAbs string
	root    string
}

func NewNarhashService(application *app.App, root string) (*NarhashService, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid server root %q: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("invalid server root %q: %w", root, err)
	}
	return &NarhashService{app: application, rootAbs: abs, root: resolved}, nil
}

// Hash 计算服务端 root 之下某个路径的 SRI 哈希
func (s *NarhashService) Hash(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	// 1. 校验请求
	path := strings.TrimSpace(req.GetValue())
	if path == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	// 2. 调用外部工具
	sri, ok, err := s.app.Hasher.Compute(ctx, resolved, s.app.Algorithm)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to hash %s: %v", path, err)
	}
	if !ok {
		// 工具缺失已在 Hasher 内部记录日志
		return nil, status.Errorf(codes.Unavailable, "%s is not available on the server", s.app.Hasher.Executable())
	}

	return wrapperspb.String(sri.String()), nil
}

// resolve 把请求路径映射为 root 之下的真实路径
// 相对路径以 root 为基准；root 之外的路径 (包括经由符号链接逃逸的) 一律 PermissionDenied，
// 不区分是否存在
func (s *NarhashService) resolve(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.rootAbs, path)
	}
	path = filepath.Clean(path)

	// 1. 词法检查
	if !within(s.rootAbs, path) && !within(s.root, path) {
		return "", errOutsideRoot
	}

	// 2. 解析符号链接后再检查一次
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		if !within(s.root, resolved) {
			return "", errOutsideRoot
		}
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", status.Error(codes.Internal, "failed to resolve path")
	}

	// 3. 不存在：只有最近的已存在祖先也在 root 之下时才报告 NotFound
	ancestor, err := nearestExisting(filepath.Dir(path))
	if err != nil || !within(s.root, ancestor) {
		return "", errOutsideRoot
	}
	return "", status.Errorf(codes.NotFound, "path not found: %s", s.display(path))
}

var errOutsideRoot = status.Error(codes.PermissionDenied, "path is outside the server root")

// nearestExisting 返回 p 最近的已存在祖先 (解析符号链接后)
func nearestExisting(p string) (string, error) {
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		p = parent
	}
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// display 返回相对 root 的路径，错误信息中不暴露服务端的目录布局
func (s *NarhashService) display(path string) string {
	for _, root := range []string{s.rootAbs, s.root} {
		if within(root, path) {
			if rel, err := filepath.Rel(root, path); err == nil {
				return rel
			}
		}
	}
	return filepath.Base(path)
}
