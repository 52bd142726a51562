package commands

import (
	"fmt"
	"path/filepath"

	"colcon-nix/pkg/augment"
	"colcon-nix/pkg/exporter"

	"github.com/spf13/cobra"
)

var augmentCmd = &cobra.Command{
	Use:   "augment [workspace]",
	Short: "Discover packages and repositories, add narhash metadata and persist it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if CN == nil {
			return fmt.Errorf("app not initialized")
		}

		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		root, err := filepath.Abs(root)
		if err != nil {
			return err
		}

		descs, err := CN.AugmentWorkspace(cmd.Context(), root)
		if err != nil {
			return err
		}
		if len(descs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No packages found in %s\n", root)
			return nil
		}
		return exporter.PrintDescriptors(cmd.OutOrStdout(), descs, augment.MetadataKey)
	},
}

func init() {
	rootCmd.AddCommand(augmentCmd)
}
