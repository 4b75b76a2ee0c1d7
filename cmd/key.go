package cmd

import (
	"fmt"
	"strings"

	"quicktranslate/config/validation"
	"quicktranslate/internal/utils"

	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the saved API key",
	Long:  "Manage the API key used for translations. The key is encrypted at rest.",
}

var keySetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Save the API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(args[0])
		if err := validation.NewInputValidator().ValidateAPIKey(key); err != nil {
			return err
		}

		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.prefs.SaveKey(key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ API key saved: %s\n", utils.MaskAPIKey(key))
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved API key (masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		key, ok, err := a.prefs.LoadKey()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "No API key saved")
			fmt.Fprintln(out, "\n💡 Tip: run 'qt key set <api-key>' to save one")
			return nil
		}
		fmt.Fprintf(out, "API Key: %s\n", utils.MaskAPIKey(key))
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.prefs.ClearKey(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ API key removed")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)
	rootCmd.AddCommand(keyCmd)
}
