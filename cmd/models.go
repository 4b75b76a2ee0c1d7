package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"quicktranslate/config"
	"quicktranslate/config/models"

	"github.com/spf13/cobra"
)

var (
	modelsRefresh bool
	modelsAll     bool
	modelsJSON    bool
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models",
	Long: `List the models in the catalog.

The catalog is fetched from the remote document at most once every 24 hours.
When it cannot be fetched the last cached copy is used, and without one the
built-in list.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVarP(&modelsRefresh, "refresh", "r", false, "fetch the catalog now, ignoring the cache age")
	modelsCmd.Flags().BoolVarP(&modelsAll, "all", "a", false, "include disabled models")
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "output in JSON format")
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := newApp(settings, appOptions{noCache: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := ctxOrBackground(cmd)
	var list []models.ModelConfig
	if modelsRefresh {
		list = a.catalog.RefreshModelConfigs(ctx)
	} else {
		list = a.catalog.GetModelConfigs(ctx)
	}
	if !modelsAll {
		list = config.FilterEnabled(list)
	}

	selected, err := a.resolveModel("")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if modelsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No models available")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tPROVIDER\tENABLED")
	for _, m := range list {
		marker := "  "
		if m.ID == selected {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%v\n", marker, m.ID, m.Name, m.Provider, m.Enabled)
	}
	return w.Flush()
}
