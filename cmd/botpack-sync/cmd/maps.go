package cmd

import (
	"github.com/spf13/cobra"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Bring the map pack up to date",
	Long: `Compares the local map pack index with the latest release. When newer,
downloads the map pack and fetches each map whose revision changed from the
release assets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, r, err := newEngine()
		if err != nil {
			return err
		}
		if err := requireOnline(cmd.Context(), eng); err != nil {
			return err
		}

		res := eng.UpdateMapPack(cmd.Context())
		r.Finish()

		for _, p := range res.Hydrate.Fetched {
			detail("fetched    %s", p)
		}
		for _, p := range res.Hydrate.Unmatched {
			info("  no asset   %s", p)
		}
		for _, p := range res.Hydrate.Failed {
			errorf("failed to download %s", p)
		}
		return report(res.Outcome, res.Outcome.Message == "up to date")
	},
}

func init() {
	rootCmd.AddCommand(mapsCmd)
}
