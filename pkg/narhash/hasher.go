package narhash

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"colcon-nix/pkg/types"

	"go.uber.org/zap"
)

// ErrToolNotFound 是唯一一种被本地恢复的失败：哈希工具不在 PATH 上
var ErrToolNotFound = errors.New("hash tool not found")

// Command 选择调用哪一种命令行形式
type Command string

const (
	// CommandLegacy: nix-hash --type <algo> <path>
	CommandLegacy Command = "legacy"
	// CommandNix: nix hash path (nix-command 仍是实验特性)
	CommandNix Command = "nix"
)

const (
	DefaultLegacyExecutable = "nix-hash"
	DefaultNixExecutable    = "nix"
)

// Logger 是 Hasher 唯一需要的日志能力，*zap.SugaredLogger 天然满足
type Logger interface {
	Error(args ...any)
}

// Config 描述如何调用外部哈希工具
type Config struct {
	Executable string  // 为空时按 Command 取默认值
	Command    Command // 为空时等同于 CommandLegacy
}

// Hasher 通过外部工具计算路径的 narhash
// 它不持有任何可变状态，可以被多个 goroutine 同时使用
type Hasher struct {
	executable string
	command    Command
	runner     Runner
	log        Logger
}

type Option func(*Hasher)

// WithRunner 替换命令执行器 (测试用)
func WithRunner(r Runner) Option {
	return func(h *Hasher) { h.runner = r }
}

// WithLogger 注入日志实现，默认是 no-op
func WithLogger(l Logger) Option {
	return func(h *Hasher) {
		if l != nil {
			h.log = l
		}
	}
}

func NewHasher(cfg Config, opts ...Option) (*Hasher, error) {
	command := cfg.Command
	if command == "" {
		command = CommandLegacy
	}

	executable := cfg.Executable
	switch command {
	case CommandLegacy:
		if executable == "" {
			executable = DefaultLegacyExecutable
		}
	case CommandNix:
		if executable == "" {
			executable = DefaultNixExecutable
		}
	default:
		return nil, fmt.Errorf("unsupported hasher command %q (want %q or %q)", command, CommandLegacy, CommandNix)
	}

	h := &Hasher{
		executable: executable,
		command:    command,
		runner:     ExecRunner{},
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Executable 返回实际调用的可执行文件名
func (h *Hasher) Executable() string { return h.executable }

// Args 返回针对 path 的完整参数列表 (不含可执行文件本身)
func (h *Hasher) Args(path string, algo types.Algorithm) []string {
	if h.command == CommandNix {
		return []string{
			"--extra-experimental-features", "nix-command",
			"hash", "path", "--type", string(algo), "--base16", path,
		}
	}
	return []string{"--type", string(algo), path}
}

// Compute 对 path 调用一次外部工具并返回 SRI 格式的哈希
//
// 返回值:
//   - (hash, true, nil): 成功
//   - ("", false, nil): 工具不存在，已记录 error 日志，调用方应当容忍缺失
//   - ("", false, err): 其他失败 (非零退出、输出不是合法摘要等)
func (h *Hasher) Compute(ctx context.Context, path string, algo types.Algorithm) (types.SRIHash, bool, error) {
	if !algo.IsValid() {
		return "", false, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algo)
	}

	out, err := h.runner.Output(ctx, h.executable, h.Args(path, algo)...)
	if err != nil {
		if isNotFound(err) {
			h.log.Error(fmt.Sprintf("Unable to find %s, is it available on the PATH?", h.executable))
			return "", false, nil
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", false, fmt.Errorf("%s failed on %s: %w: %s", h.executable, path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", false, fmt.Errorf("%s failed on %s: %w", h.executable, path, err)
	}

	sri, err := ToSRI(algo, strings.TrimSpace(string(out)))
	if err != nil {
		return "", false, fmt.Errorf("unexpected output from %s: %w", h.executable, err)
	}
	return sri, true, nil
}
