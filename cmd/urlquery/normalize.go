package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/urlquery/internal/errors"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

func normalizeCmd(configPath *string) *cobra.Command {
	var flags stateFlags

	cmd := &cobra.Command{
		Use:   "normalize <query-or-url>",
		Short: "Normalize a query string or URL",
		Long: `Import filters and sorts from a query string or URL and print the
canonical query string.

Unknown sort columns are dropped. Filters with a validator are coerced,
or kept as text when validation fails.

Examples:
  urlquery normalize --sorts a,b,c '?sort=-b,zzz&filter[name]=jhon'
  urlquery normalize --filter-schema age=int -o json 'https://api.test/posts?filter[age]=30'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(*configPath)
			if err != nil {
				return err
			}

			params, err := urlquery.ParseQuery(args[0])
			if err != nil {
				return errors.MalformedQuery(args[0], err)
			}

			q, err := newState(cfg, params, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer q.Close()

			return render(cmd.OutOrStdout(), q, flags.format)
		},
	}

	flags.register(cmd)
	return cmd
}
