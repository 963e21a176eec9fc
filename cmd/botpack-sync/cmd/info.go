package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where botpack-sync keeps its files",
	Long: `Displays the botpack-sync version, the configuration file path, the
resolved content, state and cache locations, and the configured packs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("botpack-sync %s\n", version)
		fmt.Printf("  config:        %s\n", resolvedConfigPath())
		fmt.Printf("  state file:    %s\n", cfg.StatePath())
		fmt.Printf("  cache dir:     %s\n", cfg.CachePath())
		fmt.Printf("  bot pack:      %s/%s@%s -> %s\n", cfg.Botpack.Owner, cfg.Botpack.Name, cfg.Botpack.Branch, cfg.CheckoutDir(cfg.Botpack))
		fmt.Printf("  map pack:      %s/%s@%s -> %s\n", cfg.Mappack.Owner, cfg.Mappack.Name, cfg.Mappack.Branch, cfg.CheckoutDir(cfg.Mappack))
		if printQuiet() {
			return nil
		}
		fmt.Printf("  max patch gap: %d\n", cfg.Tuning.MaxPatchGap)
		fmt.Printf("  online check:  %t\n", cfg.OnlineCheck.IsEnabled())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
