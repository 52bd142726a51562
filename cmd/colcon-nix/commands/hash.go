package commands

import (
	"fmt"

	"colcon-nix/pkg/client"

	"github.com/spf13/cobra"
)

var hashRemote string

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Print the SRI narhash of a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		// 1. 远程模式：路径在服务端解析
		if hashRemote != "" {
			c, err := client.NewNarhashClient(hashRemote)
			if err != nil {
				return err
			}
			defer c.Close()

			sri, err := c.Hash(ctx, path)
			if err != nil {
				return fmt.Errorf("remote hash failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sri)
			return nil
		}

		// 2. 本地模式
		if CN == nil {
			return fmt.Errorf("app not initialized")
		}
		sri, ok, err := CN.Hasher.Compute(ctx, path, CN.Algorithm)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no narhash for %s: %s is not available", path, CN.Hasher.Executable())
		}

		fmt.Fprintln(cmd.OutOrStdout(), sri)
		return nil
	},
}

func init() {
	hashCmd.Flags().StringVar(&hashRemote, "remote", "", "hash on a colcon-nix-server at this address; the path is resolved under the server root")
	rootCmd.AddCommand(hashCmd)
}
