package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"quicktranslate/config/validation"
	"quicktranslate/internal/providers"

	"github.com/spf13/cobra"
)

var (
	translateFrom    string
	translateTo      string
	translateModel   string
	translateKey     string
	translateJSON    bool
	translateNoCache bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text with the selected model",
	Long: `Translate text with the selected model, or the one given by --model.

The text is read from the arguments, or from stdin when no arguments are given:
   qt translate "Hello, world"
   echo "Hello" | qt translate --to ja
   qt translate --model anthropic/claude-3-haiku-20240307 "Good morning"`,
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringVarP(&translateFrom, "from", "f", "en", "source language code")
	translateCmd.Flags().StringVarP(&translateTo, "to", "t", "zh", "target language code")
	translateCmd.Flags().StringVarP(&translateModel, "model", "m", "", "model id (default: saved model)")
	translateCmd.Flags().StringVarP(&translateKey, "key", "k", "", "API key (default: saved key)")
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "output the full response as JSON")
	translateCmd.Flags().BoolVar(&translateNoCache, "no-cache", false, "bypass the translation cache")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	iv := validation.NewInputValidator()
	if err := iv.ValidateText(text); err != nil {
		return err
	}
	for _, lang := range []string{translateFrom, translateTo} {
		if err := iv.ValidateLanguage(lang); err != nil {
			return err
		}
	}

	a, err := newApp(settings, appOptions{noCache: translateNoCache})
	if err != nil {
		return err
	}
	defer a.Close()

	model, err := a.resolveModel(translateModel)
	if err != nil {
		return err
	}
	key, err := a.resolveKey(translateKey)
	if err != nil {
		return err
	}

	resp, err := a.router.TranslateText(ctxOrBackground(cmd), providers.TranslationRequest{
		Text:           text,
		SourceLanguage: translateFrom,
		TargetLanguage: translateTo,
		ModelID:        model,
		APIKey:         key,
	})
	if err != nil {
		return describeTranslateError(err)
	}

	out := cmd.OutOrStdout()
	if translateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(resp)
	}
	fmt.Fprintln(out, resp.TranslatedText)
	return nil
}

// readText joins args, or reads stdin when there are none
func readText(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := in.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", errors.New("no text given, pass it as an argument or pipe it on stdin")
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// describeTranslateError adds the error kind to translation failures
func describeTranslateError(err error) error {
	var te *providers.TranslationError
	if errors.As(err, &te) {
		return fmt.Errorf("%s: %s", te.Kind, te.Message)
	}
	return err
}

func ctxOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
