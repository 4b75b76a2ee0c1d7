package cmd

import (
	"fmt"
	"os"

	"quicktranslate/internal/providers"

	"github.com/spf13/cobra"
)

var modelNoPrompt bool

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage the selected model",
}

var modelUseCmd = &cobra.Command{
	Use:   "use [model-id]",
	Short: "Select the model used for translations",
	Long: `Select the model used for translations.

The model must be in the catalog. Without an argument an interactive
numbered list is shown when stdin is a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModelUse,
}

var modelShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the selected model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{noCache: true})
		if err != nil {
			return err
		}
		defer a.Close()

		_, saved, err := a.prefs.LoadModel()
		if err != nil {
			return err
		}
		model, err := a.resolveModel("")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if saved {
			fmt.Fprintf(out, "Model: %s\n", model)
		} else {
			fmt.Fprintf(out, "Model: %s (default)\n", model)
		}
		return nil
	},
}

func init() {
	modelUseCmd.Flags().BoolVar(&modelNoPrompt, "no-prompt", false, "never ask interactively")
	modelCmd.AddCommand(modelUseCmd, modelShowCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelUse(cmd *cobra.Command, args []string) error {
	a, err := newApp(settings, appOptions{noCache: true})
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.catalog.EnabledModels(ctxOrBackground(cmd))
	current, err := a.resolveModel("")
	if err != nil {
		return err
	}

	var modelArg string
	if len(args) == 1 {
		modelArg = args[0]
	}

	ms := NewModelSelector(os.Stdin, cmd.OutOrStdout())
	model := modelArg
	switch {
	case ms.ShouldPrompt(list, modelArg, modelNoPrompt):
		model, err = ms.PromptSimple(list, current)
		if err != nil {
			return err
		}
	case model == "":
		return fmt.Errorf("no model given, pass a model id or run interactively")
	}

	if err := ms.ValidateModelInList(model, list); err != nil {
		return err
	}
	if _, err := providers.ResolveKind(model); err != nil {
		return err
	}
	if err := a.prefs.SaveModel(model); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Model set to %s\n", model)
	return nil
}
