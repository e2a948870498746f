package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"CatalogAPI/internal/catalog"

	"github.com/spf13/cobra"
)

type planOptions struct {
	filters []string
	store   []string
	sort    string
	page    int
	perPage int
}

type planOutput struct {
	Plan     *catalog.QueryPlan `json:"plan"`
	SQL      string             `json:"sql"`
	Args     []any              `json:"args"`
	CountSQL string             `json:"count_sql"`
}

// NewPlanCommand resolves a request against a catalog and prints the SQL it
// compiles to, without touching a database.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan <catalog>",
		Short: "Print the query plan and SQL for a catalog request",
		Example: `  catalogctl plan PublishedPosts --filter title=go --filter tags.name=go --filter tags.name=rust --sort rating:DESC
  catalogctl plan QuestionAnswers --store question_id=12 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, catalogs, err := rootOpts.load()
			if err != nil {
				return err
			}
			c, err := catalogs.Get(args[0])
			if err != nil {
				return err
			}
			filters, err := parseAssignments(opts.filters)
			if err != nil {
				return fmt.Errorf("--filter: %w", err)
			}
			store, err := parseAssignments(opts.store)
			if err != nil {
				return fmt.Errorf("--store: %w", err)
			}

			plan, err := c.BuildPlan(catalog.Request{
				Filters: filters,
				Sort:    opts.sort,
				Page:    opts.page,
				PerPage: opts.perPage,
			}, catalog.MapStore(store))
			if err != nil {
				return err
			}
			out, err := compile(c, plan)
			if err != nil {
				return err
			}
			return printPlan(cmd, rootOpts.Format, out)
		},
	}

	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "filter value as key=value; repeat a key for a list")
	cmd.Flags().StringArrayVar(&opts.store, "store", nil, "store value as key=value")
	cmd.Flags().StringVar(&opts.sort, "sort", "", `request sort, e.g. "title:DESC|id"`)
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 0, "page size (0 uses the catalog default)")
	return cmd
}

func compile(c *catalog.Catalog, plan *catalog.QueryPlan) (planOutput, error) {
	out := planOutput{Plan: plan}
	index, err := catalog.BuildIndexQuery(c.Source(), plan)
	if err != nil {
		return out, err
	}
	if out.SQL, out.Args, err = index.ToSql(); err != nil {
		return out, err
	}
	count, err := catalog.BuildCountQuery(c.Source(), plan)
	if err != nil {
		return out, err
	}
	out.CountSQL, _, err = count.ToSql()
	return out, err
}

func printPlan(cmd *cobra.Command, format string, out planOutput) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "catalog: %s (%s)\n", out.Plan.Catalog, out.Plan.Source)
	for _, f := range out.Plan.Filters {
		scope := "request"
		if f.Permanent {
			scope = "permanent"
		}
		fmt.Fprintf(w, "filter:  %s %s %v [%s]\n", f.Column.Path(), f.Op, f.Value, scope)
	}
	for _, s := range out.Plan.Sorts {
		fmt.Fprintf(w, "sort:    %s\n", s)
	}
	fmt.Fprintf(w, "page:    %d (size %d)\n", out.Plan.Page, out.Plan.PageSize)
	fmt.Fprintf(w, "sql:     %s\n", out.SQL)
	fmt.Fprintf(w, "args:    %v\n", out.Args)
	fmt.Fprintf(w, "count:   %s\n", out.CountSQL)
	return nil
}

// parseAssignments turns key=value pairs into a map. Values that parse as
// JSON keep their type; anything else is a string. A repeated key collects
// its values into a list.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, raw, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		switch prev := out[k].(type) {
		case nil:
			if _, seen := out[k]; seen {
				out[k] = []any{nil, v}
			} else {
				out[k] = v
			}
		case []any:
			out[k] = append(prev, v)
		default:
			out[k] = []any{prev, v}
		}
	}
	return out, nil
}
