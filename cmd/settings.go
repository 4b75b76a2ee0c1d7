package cmd

import (
	"quicktranslate/internal/tui"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"ui"},
	Short:   "Edit the API key and model interactively",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.Run(a.prefs, a.catalog, a.router)
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}
