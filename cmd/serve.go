package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quicktranslate/config"
	"quicktranslate/internal/logging"
	"quicktranslate/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local translation HTTP API",
	Long: `Run an HTTP API exposing translation, connection tests, settings and the
model catalog. Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(ctxOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := v.GetString(config.KeyServerListen)
		fmt.Fprintf(cmd.OutOrStdout(), "🚀 Listening on http://%s\n", addr)
		return server.New(a.router, a.catalog, a.prefs, logging.For(logging.CategoryServer)).Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("listen", config.DefaultServerListen, "address to listen on")
	bindFlag(config.KeyServerListen, serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}
