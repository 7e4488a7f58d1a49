package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlquery/internal/errors"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

func composeCmd(configPath *string) *cobra.Command {
	var (
		flags   stateFlags
		sort    string
		filters []string
		include []string
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Build a query string from flags",
		Long: `Build a query string from filters, a sort string, included relations
and pagination.

Filters go through the same validators as normalize.

Examples:
  urlquery compose --sorts a,b,c --sort -b,a
  urlquery compose --filter name=jhon --filter age=30 --filter-schema age=int --page 2 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(*configPath)
			if err != nil {
				return err
			}
			if page < 0 || perPage < 0 {
				return errors.New("Q011")
			}

			var params urlquery.Params
			for _, f := range filters {
				k, v, err := splitPair("filter", f)
				if err != nil {
					return err
				}
				params = params.Add(fmt.Sprintf("%s[%s]", urlquery.ParamFilter, k), v)
			}
			if sort != "" {
				params = params.Add(urlquery.ParamSort, sort)
			}

			q, err := newState(cfg, params, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer q.Close()

			q.Batch(func() {
				if len(include) > 0 {
					q.AddInclude(include...)
				}
				if cmd.Flags().Changed("page") {
					q.SetPage(page)
				}
				if cmd.Flags().Changed("per-page") {
					q.SetPerPage(perPage)
				}
			})

			return render(cmd.OutOrStdout(), q, flags.format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sort, "sort", "", "Sort string, e.g. -b,a")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter as column=value (repeatable)")
	cmd.Flags().StringSliceVar(&include, "include", nil, "Relations to include")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Page size")
	return cmd
}
