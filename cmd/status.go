package cmd

import (
	"fmt"
	"time"

	"quicktranslate/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current settings",
	Long:  "Show the saved API key (masked), the selected model, the catalog cache and the data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		key, hasKey, err := a.prefs.LoadKey()
		if err != nil {
			return err
		}
		model, err := a.resolveModel("")
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Current settings:")
		if hasKey {
			fmt.Fprintf(out, "  API Key: %s\n", utils.MaskAPIKey(key))
		} else {
			fmt.Fprintln(out, "  API Key: (not set)")
		}
		fmt.Fprintf(out, "  Model: %s\n", model)
		fmt.Fprintf(out, "  Data dir: %s\n", a.settings.DataDir)
		fmt.Fprintf(out, "  Translation cache: %v\n", a.settings.CacheEnabled)

		if cached := a.catalog.Cached(); cached != nil {
			updated := time.UnixMilli(cached.LastUpdated).Local().Format(time.DateTime)
			fmt.Fprintf(out, "  Catalog: v%s, %d models, updated %s\n", cached.Version, len(cached.Models), updated)
		} else {
			fmt.Fprintln(out, "  Catalog: not fetched yet")
		}

		if !hasKey {
			fmt.Fprintln(out, "\n💡 Tip: run 'qt key set <api-key>' to save an API key")
		}
		return nil
	},
}
