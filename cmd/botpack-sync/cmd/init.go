package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default config.yaml scaffold. Every key is optional;
// the values shown are the built-in defaults.
const initTemplate = `# botpack-sync configuration
version: 1

# Root directory for both packs, the state file and the patch cache.
# content_dir: ~/.local/share/botpack-sync
# state_file: ""          # default <content_dir>/state.yaml
# cache_dir: ""           # default <content_dir>/cache

# api_base_url: https://api.github.com
# web_base_url: https://github.com
# user_agent: ""          # default: random per run
# request_timeout: 30s    # metadata requests only

botpack:
  owner: RLBot
  name: RLBotPack
  branch: master
  folder: RLBotPackDeletable

mappack:
  owner: azeemba
  name: RLBotMapPack
  branch: main
  folder: RLBotMapPackDeletable

# tuning:
#   max_patch_gap: 50
#   size_scale: 1000
#   compression_ratio: 0.62
#   fallback_size: 170000000
#   progress_interval: 100ms
#   prefetch_window: 0                      # 0 = download the whole chain at once
#   full_download_on_patch_failure: false

# online_check:
#   enabled: true
#   addrs: ["clients3.google.com:80", "detectportal.firefox.com:80"]
#   timeout: 5s
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter botpack-sync configuration",
	Long: `Creates a config.yaml at the --config path (default: the user config
directory) with the built-in defaults written out and documented.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, err := filepath.Abs(resolvedConfigPath())
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Adjust content_dir if the packs should live elsewhere")
		info("  2. Run 'botpack-sync update' to install the bot pack")
		info("  3. Run 'botpack-sync maps' to install the map pack")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
