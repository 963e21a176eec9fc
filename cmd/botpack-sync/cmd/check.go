package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a newer bot pack release exists",
	Long: `Compares the recorded bot pack revision with the latest release.
Exit 0 when up to date (or when the answer is unknown); exit non-zero when a
newer release is available. Suitable for scripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		if err := requireOnline(cmd.Context(), eng); err != nil {
			return err
		}

		res := eng.Check(cmd.Context())

		local := "(none)"
		if res.HasLocal {
			local = res.Local.String()
		}
		remote := "(unknown)"
		if res.RemoteErr == nil {
			remote = res.Remote.String()
		}
		info("  installed  %s", local)
		info("  latest     %s", remote)
		if res.RemoteErr != nil {
			detail("release lookup failed: %v", res.RemoteErr)
		}
		if !res.CheckoutPresent {
			detail("bot pack folder is missing")
		}

		if res.UpToDate {
			info("The bot pack is up to date.")
			return nil
		}
		return fmt.Errorf("check failed: %s is available (installed %s)", remote, local)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
