package cmd

import (
	"fmt"
	"os"

	"quicktranslate/config"
	"quicktranslate/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var (
	cfgFile  string
	settings config.Settings
	v        = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "qt",
	Short: "Multi-provider LLM translation tool",
	Long: `QuickTranslate translates text through OpenAI, Anthropic or OpenRouter models.

Model ids are prefixed with their provider, e.g. openai/gpt-4o-mini or
openrouter/anthropic/claude-3-haiku. The model catalog is fetched from a
remote document and cached for 24 hours.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(v, cfgFile); err != nil {
			return err
		}
		s, err := config.Load(v)
		if err != nil {
			return err
		}
		settings = s
		logging.Init(os.Stderr, s.LogLevel, s.LogDebug)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.quicktranslate.yaml)")
	flags.String("data-dir", "", "directory holding preferences, catalog and cache")
	flags.String("log-level", "", "log level (ERROR, WARN, INFO, DEBUG)")

	bindFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	bindFlag(config.KeyLogLevel, flags.Lookup("log-level"))
}

// bindFlag makes flag the highest-priority source of the viper key
func bindFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag to %s: %v", key, err))
	}
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`qt {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

// printError reports err on stderr in the CLI's usual format
func printError(err error) {
	fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
}
