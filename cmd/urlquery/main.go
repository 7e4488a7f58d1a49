// Command urlquery composes, normalizes and serves list query strings.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlquery/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "urlquery",
		Short: "Compose and normalize list query strings",
		Long: `urlquery manages the filter, sort, include and pagination parameters
of list endpoints.

  • normalize a URL into canonical filters and sorts
  • compose a query string from flags
  • serve query state over HTTP and WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./urlquery.json if present)")

	rootCmd.AddCommand(
		normalizeCmd(&configPath),
		composeCmd(&configPath),
		serveCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
