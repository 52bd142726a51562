package commands

import (
	"fmt"
	"text/tabwriter"

	"colcon-nix/pkg/augment"

	"github.com/spf13/cobra"
)

var extensionsCmd = &cobra.Command{
	Use:   "extensions",
	Short: "List registered extensions per extension point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if CN == nil {
			return fmt.Errorf("app not initialized")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POINT\tVERSION\tEXTENSION")
		for _, p := range augment.Points() {
			for _, ext := range CN.Registry.Extensions(p) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Version, ext.Name)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(extensionsCmd)
}
