package main

import (
	"os"

	"colcon-nix/cmd/colcon-nix/commands"
)

func main() {
	// cobra 已经把错误打印到 stderr
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
