package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// DataDir 是工作空间内本工具的数据目录
const DataDir = ".colcon-nix"

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 默认值
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(DataDir)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, DataDir))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 3. 环境变量 (COLCON_NIX_HASHER_EXECUTABLE 等)
	viper.SetEnvPrefix("COLCON_NIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件；没找到不算错
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	// 外部哈希工具
	viper.SetDefault("hasher.command", "legacy")
	viper.SetDefault("hasher.executable", "")
	viper.SetDefault("hasher.algorithm", "sha256")

	// 并发度由宿主 (本 CLI) 决定
	viper.SetDefault("augment.parallel", runtime.NumCPU())

	// 存储
	viper.SetDefault("store.type", "disk")
	viper.SetDefault("store.path", filepath.Join(DataDir, "narhash.json"))
	viper.SetDefault("store.sql.driver", "sqlite")
	viper.SetDefault("store.sql.dsn", filepath.Join(DataDir, "narhash.db"))
	viper.SetDefault("store.s3.region", "us-east-1")

	// 缓存 (为空表示关闭)
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", "24h")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)

	// 服务端默认只监听本机，只允许访问 server.root 之下的路径
	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("server.root", ".")
}
