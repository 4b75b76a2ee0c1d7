package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quicktranslate/internal/providers"
	"quicktranslate/internal/utils"

	"github.com/spf13/cobra"
)

var (
	pingKey  string
	pingJSON bool
)

// errConnectionFailed is returned so the process exits non-zero after a failed probe
var errConnectionFailed = errors.New("connection test failed")

var pingCmd = &cobra.Command{
	Use:   "ping [model-id]",
	Short: "Test provider connectivity with the saved API key",
	Long: `Test provider connectivity with the saved API key.

1. Test the selected model's provider:
   qt ping

2. Test a specific model's provider:
   qt ping anthropic/claude-3-haiku-20240307

3. Test another key without saving it:
   qt ping openai/gpt-4o-mini --key sk-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().StringVarP(&pingKey, "key", "k", "", "API key (default: saved key)")
	pingCmd.Flags().BoolVar(&pingJSON, "json", false, "output result in JSON format")
}

type pingResult struct {
	Model      string `json:"model"`
	Provider   string `json:"provider"`
	Endpoint   string `json:"endpoint,omitempty"`
	Success    bool   `json:"success"`
	DurationMS int64  `json:"durationMs"`
}

func runPing(cmd *cobra.Command, args []string) error {
	a, err := newApp(settings, appOptions{noCache: true})
	if err != nil {
		return err
	}
	defer a.Close()

	explicit := ""
	if len(args) == 1 {
		explicit = args[0]
	}
	model, err := a.resolveModel(explicit)
	if err != nil {
		return err
	}
	kind, err := a.router.ResolveProvider(model)
	if err != nil {
		return err
	}
	key, err := a.resolveKey(pingKey)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !pingJSON {
		fmt.Fprintf(out, "Testing connection: %s (%s, key %s)\n", model, kind, utils.MaskAPIKey(key))
	}

	start := time.Now()
	ok := a.router.TestConnection(ctxOrBackground(cmd), model, key)
	elapsed := time.Since(start)

	if pingJSON {
		data, err := json.Marshal(pingResult{
			Model:      model,
			Provider:   string(kind),
			Endpoint:   utils.ExtractHost(endpointFor(a.settings.Endpoints, kind)),
			Success:    ok,
			DurationMS: elapsed.Milliseconds(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else if ok {
		fmt.Fprintf(out, "✅ Connection successful (%v)\n", elapsed.Round(time.Millisecond))
	} else {
		fmt.Fprintf(out, "❌ Connection failed (%v)\n", elapsed.Round(time.Millisecond))
	}

	if !ok {
		return errConnectionFailed
	}
	return nil
}

// endpointFor returns the configured or default base URL of kind
func endpointFor(e providers.Endpoints, kind providers.Kind) string {
	switch kind {
	case providers.KindOpenAI:
		if e.OpenAI != "" {
			return e.OpenAI
		}
		return providers.DefaultOpenAIBaseURL
	case providers.KindAnthropic:
		if e.Anthropic != "" {
			return e.Anthropic
		}
		return providers.DefaultAnthropicBaseURL
	case providers.KindOpenRouter:
		if e.OpenRouter != "" {
			return e.OpenRouter
		}
		return providers.DefaultOpenRouterBaseURL
	}
	return ""
}
