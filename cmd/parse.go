package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pca-scheduler/core/availability"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <availability>",
		Short: "Show the days an availability text expands to",
		Example: `  pcasched parse "1-5, 10, 12-14"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := availability.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d days)\n", set, len(set))
			return err
		},
	}
}
