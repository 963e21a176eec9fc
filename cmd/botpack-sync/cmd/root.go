package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	verbose    bool
	quiet      bool
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "botpack-sync",
	Short: "Keep the RLBot bot pack and map pack up to date",
	Long: `botpack-sync maintains a local copy of the RLBot community bot pack and
map pack. It applies the incremental patches published with each release,
falls back to a full snapshot download when patching is not possible, and
records the installed revision so interrupted runs resume where they stopped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("botpack-sync %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output and debug logs")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "do not render progress")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
