package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/urlquery/internal/config"
	"github.com/vango-dev/urlquery/internal/errors"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

// stateFlags are shared by normalize and compose.
type stateFlags struct {
	sorts        []string
	filterSchema []string
	format       string
}

func (f *stateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.sorts, "sorts", nil, "Sortable columns in initial order (overrides config)")
	cmd.Flags().StringArrayVar(&f.filterSchema, "filter-schema", nil, "Filter validator as column=spec, e.g. age=int (repeatable)")
	cmd.Flags().StringVarP(&f.format, "format", "o", "text", "Output format: text, json or yaml")
}

// load reads the config and applies flag overrides.
func (f *stateFlags) load(configPath string) (*config.Config, error) {
	switch f.format {
	case "text", "json", "yaml":
	default:
		return nil, errors.New("Q041").WithDetail(fmt.Sprintf("Got %q.", f.format))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if len(f.sorts) > 0 {
		cfg.Sorts = urlquery.Columns(f.sorts...)
	}
	cfg.Filters = append(cfg.Filters, f.filterSchema...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newState builds a QueryState normalized from params. Dropped sort
// columns and raw filters are reported on warnings.
func newState(cfg *config.Config, params urlquery.Params, warnings io.Writer) (*urlquery.QueryState, error) {
	opts, err := cfg.QueryOptions(cfg.Logger(warnings))
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		urlquery.WithNormalizeFromURL(true),
		urlquery.WithSearchParams(params),
		urlquery.WithOnNormalize(func(n urlquery.Normalized) {
			for _, column := range n.Unknown {
				warn(warnings, "sort column %q is not sortable, dropped", column)
			}
			for _, column := range n.Raw {
				warn(warnings, "filter %q failed validation, kept as text", column)
			}
		}),
	)
	return urlquery.New(opts...), nil
}

// render writes the state in the requested format.
func render(w io.Writer, q *urlquery.QueryState, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(q.Snapshot())
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(q.Snapshot()); err != nil {
			return err
		}
		return enc.Close()
	}

	_, err := fmt.Fprintln(w, q.QueryString())
	return err
}

// splitPair splits "key=value" flag values.
func splitPair(flag, s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return "", "", errors.New("Q040").
			WithDetail(fmt.Sprintf("--%s expects key=value, got %q.", flag, s))
	}
	return k, v, nil
}
