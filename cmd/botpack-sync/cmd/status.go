package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the installed revisions and registered folders",
	Long: `Shows the recorded bot pack revision, the local map pack revision, the
folders registered for the launcher, and the size of the patch cache.
Reads local state only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}

		st, err := eng.Status()
		if err != nil {
			return err
		}

		tag := "(none)"
		switch {
		case st.TagErr != nil:
			tag = fmt.Sprintf("(unreadable: %v)", st.TagErr)
		case st.HasTag:
			tag = st.Tag.String()
		}
		maps := "(not installed)"
		if st.HasMapPack {
			maps = fmt.Sprintf("%d", st.MapRevision)
		}
		present := "present"
		if !st.CheckoutPresent {
			present = "missing"
		}

		fmt.Printf("%-16s %s\n", "BOTPACK", tag)
		fmt.Printf("%-16s %s (%s)\n", "FOLDER", st.BotpackDir, present)
		fmt.Printf("%-16s %s\n", "MAPPACK", maps)
		fmt.Printf("%-16s %s (%s)\n", "CACHE", st.CacheDir, humanSize(st.CacheSize))
		if len(st.Folders) == 0 {
			info("No folders registered.")
			return nil
		}
		fmt.Println("REGISTERED")
		for _, f := range st.Folders {
			fmt.Printf("  %s\n", f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
