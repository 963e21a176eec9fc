package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove empty directories from the bot pack",
	Long: `Removes directories in the bot pack checkout that contain no files,
deepest first. Patch runs do this automatically; the command cleans up after
manual edits or interrupted runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Prune()
		for _, d := range result.Removed {
			detail("removed  %s", d)
		}
		if err != nil {
			errorf("%v", err)
			return fmt.Errorf("prune finished with errors")
		}

		if len(result.Removed) == 0 {
			info("Nothing to prune.")
			return nil
		}
		info("Pruned %d empty directories.", len(result.Removed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
