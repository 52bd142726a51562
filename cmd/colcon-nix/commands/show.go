package commands

import (
	"errors"
	"fmt"
	"strings"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/exporter"
	"colcon-nix/pkg/narhash"
	"colcon-nix/pkg/record"

	"github.com/spf13/cobra"
)

var (
	showJSON    bool
	showNarhash string
)

var showCmd = &cobra.Command{
	Use:   "show [kind/name | --narhash sri]",
	Short: "Show persisted narhash records",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if CN == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		// 1. 按哈希反查
		if showNarhash != "" {
			if len(args) > 0 {
				return fmt.Errorf("--narhash cannot be combined with a record key")
			}
			h, err := narhash.ParseSRI(showNarhash)
			if err != nil {
				return err
			}
			recs, err := record.FindByNarHash(ctx, CN.Store, h)
			if err != nil {
				return err
			}
			if showJSON {
				return exporter.PrintJSON(out, recs)
			}
			return exporter.PrintRecords(out, recs)
		}

		// 2. 列出全部
		if len(args) == 0 {
			recs, err := CN.Store.List(ctx)
			if err != nil {
				return err
			}
			if showJSON {
				return exporter.PrintJSON(out, recs)
			}
			return exporter.PrintRecords(out, recs)
		}

		// 3. 单条记录
		kindStr, name, ok := strings.Cut(args[0], "/")
		if !ok || name == "" {
			return fmt.Errorf("invalid record key %q (want kind/name)", args[0])
		}
		kind, err := descriptor.ParseKind(kindStr)
		if err != nil {
			return err
		}

		rec, err := CN.Store.Get(ctx, kind, name)
		if err != nil {
			if errors.Is(err, record.ErrNotFound) {
				return fmt.Errorf("no record for %s", args[0])
			}
			return err
		}
		if showJSON {
			return exporter.PrintJSON(out, rec)
		}
		return exporter.PrintRecord(out, rec)
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print records as JSON")
	showCmd.Flags().StringVar(&showNarhash, "narhash", "", "list records whose narhash equals this SRI hash")
	rootCmd.AddCommand(showCmd)
}
