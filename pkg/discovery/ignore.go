package discovery

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile 是工作空间根目录下的忽略规则文件
const IgnoreFile = ".colconignore"

// Matcher 判断工作空间中的某个目录是否应该跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 工作空间根目录（用于查找 .colconignore）
func NewMatcher(rootPath string) (*Matcher, error) {
	// 1. 默认规则：colcon 自己的输出目录与 VCS 元数据
	defaultRules := []string{
		"/build",
		"/install",
		"/log",
		".git",
		".hg",
		".svn",
		".colcon-nix", // 本工具自己的数据目录
	}

	var ignorer *gitignore.GitIgnore
	var err error

	// 2. 合并用户的 .colconignore
	ignoreFilePath := filepath.Join(rootPath, IgnoreFile)
	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
	} else {
		ignorer = gitignore.CompileIgnoreLines(defaultRules...)
	}
	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Matches 检查相对于工作空间根目录的路径是否被忽略
func (m *Matcher) Matches(path string) bool {
	if m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(path)
}
