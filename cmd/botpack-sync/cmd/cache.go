package cmd

import (
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the patch archive cache",
}

var cacheSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the size of the patch archive cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		size, err := eng.CacheSize()
		if err != nil {
			return err
		}
		info("%s  %s", humanSize(size), eng.Cache.Path())
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete every cached patch archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		before, err := eng.CacheSize()
		if err != nil {
			return err
		}
		if err := eng.CacheClean(); err != nil {
			return err
		}
		info("Freed %s.", humanSize(before))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheSizeCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	rootCmd.AddCommand(cacheCmd)
}
