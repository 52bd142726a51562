package commands

import (
	"fmt"
	"os"

	"colcon-nix/pkg/app"
	"colcon-nix/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	CN *app.App
)

var rootCmd = &cobra.Command{
	Use:           "colcon-nix",
	Short:         "colcon-nix: Nix narhash augmentation for colcon workspaces",
	SilenceUsage:  true,
	SilenceErrors: false,
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 测试中可能已经注入了 App
		if CN != nil {
			return nil
		}

		var err error
		CN, err = app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize colcon-nix: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if CN == nil {
			return nil
		}
		err := CN.Close()
		CN = nil
		return err
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.colcon-nix/config.yaml)")

	// 2. 常用配置项，既可以写在 yaml 里，也可以用参数覆盖
	bindFlag("hasher-executable", "hasher.executable", "", "hash tool to invoke (default depends on hasher.command)")
	bindFlag("store-type", "store.type", "", "record store backend: disk, sql or s3")
	bindFlag("log-level", "log.level", "", "log level: debug, info, warn, error")
}

func bindFlag(flag, key, value, usage string) {
	rootCmd.PersistentFlags().String(flag, value, usage)
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
