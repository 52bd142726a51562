package narhash

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
)

// Runner 负责执行外部命令并返回其标准输出
// 抽象出来是为了在测试中替换掉真实的 nix-hash
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner 使用 os/exec 执行命令
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	// Output 会在失败时把 stderr 收集到 *exec.ExitError 中
	return exec.CommandContext(ctx, name, args...).Output()
}

// isNotFound 判断错误是否表示可执行文件不存在
// - 裸命令名: PATH 中找不到 -> exec.ErrNotFound
// - 绝对/相对路径: 启动失败 -> *fs.PathError(ENOENT)
func isNotFound(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false
	}
	return errors.Is(err, ErrToolNotFound) ||
		errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist)
}
