package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Bring the bot pack up to date",
	Long: `Applies every incremental patch between the installed revision and the
latest release, in order. When no revision is recorded, the checkout is
missing, or the gap is too large, downloads the full bot pack instead.
Exits non-zero when the bot pack could not be brought up to date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, r, err := newEngine()
		if err != nil {
			return err
		}
		if err := requireOnline(cmd.Context(), eng); err != nil {
			return err
		}

		res := eng.EnsureBotpack(cmd.Context())
		r.Finish()

		if res.Patch.Planned > 0 {
			detail("patches applied: %d of %d", res.Patch.Applied, res.Patch.Planned)
		}
		if res.FullDownload {
			detail("performed a full download")
		}
		upToDate := !res.FullDownload && !res.Patch.Failed && res.Patch.RemoteErr == nil
		return report(res.Outcome, upToDate)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a fresh copy of the bot pack",
	Long: `Deletes the bot pack folder, downloads the latest snapshot of its branch,
and records the latest release revision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, r, err := newEngine()
		if err != nil {
			return err
		}
		if err := requireOnline(cmd.Context(), eng); err != nil {
			return err
		}

		result := eng.DownloadBotpack(cmd.Context())
		r.Finish()
		return report(result, false)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(downloadCmd)
}
