package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the translation cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired translations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.openCache()
		if err != nil {
			return err
		}
		n, err := c.Purge(ctxOrBackground(cmd), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed %d expired entries\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached translations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.openCache()
		if err != nil {
			return err
		}
		if err := c.Clear(ctxOrBackground(cmd)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Translation cache cleared")
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of cached translations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.openCache()
		if err != nil {
			return err
		}
		n, err := c.Len(ctxOrBackground(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d\nPath: %s\n", n, a.settings.CachePath())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd, cacheClearCmd, cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
