package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/core/query/expr"
	"github.com/satishbabariya/querydeck/internal/ui"
	"github.com/spf13/cobra"
)

// queryFlags are the descriptor flags shared by run, explain and saved save.
type queryFlags struct {
	table      string
	columns    []string
	where      string
	sort       string
	aggregates string
	page       int
	pageSize   int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.table, "table", "t", "", "table to query")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "columns to select (default all)")
	cmd.Flags().StringVarP(&f.where, "where", "w", "", `filters, e.g. "status = 'active' AND age >= 21"`)
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", `sort keys, e.g. "created_at DESC, id"`)
	cmd.Flags().StringVar(&f.aggregates, "agg", "", `per-row aggregates, e.g. "SUM(a, b) AS total"`)
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page (0 returns every row)")
}

// descriptor parses the flag values into a query descriptor.
func (f *queryFlags) descriptor() (*domain.Descriptor, error) {
	desc := &domain.Descriptor{
		Table:    strings.TrimSpace(f.table),
		Page:     f.page,
		PageSize: f.pageSize,
	}
	for _, col := range f.columns {
		if col = strings.TrimSpace(col); col != "" {
			desc.Columns = append(desc.Columns, col)
		}
	}

	var err error
	if desc.Filters, err = expr.ParseWhere(f.where); err != nil {
		return nil, fmt.Errorf("--where: %w", err)
	}
	if desc.Sorting, err = expr.ParseOrderBy(f.sort); err != nil {
		return nil, fmt.Errorf("--sort: %w", err)
	}
	if desc.Aggregates, err = expr.ParseAggregates(f.aggregates); err != nil {
		return nil, fmt.Errorf("--agg: %w", err)
	}
	return desc, nil
}

// NewRunCommand creates the run command.
func NewRunCommand(a *App) *cobra.Command {
	var (
		flags   queryFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a query and print one page of results",
		Example: `  querydeck run -t orders --columns id,total,status -w "status = 'paid'" -s "total DESC" --page-size 25
  querydeck run -t line_items --agg "SUM(price, tax) AS gross" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := flags.descriptor()
			if err != nil {
				return err
			}
			return a.execute(cmd, desc, jsonOut)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the response envelope as JSON")

	return cmd
}

// execute runs desc and prints either the envelope or a rendered table.
func (a *App) execute(cmd *cobra.Command, desc *domain.Descriptor, jsonOut bool) error {
	c, err := a.Container(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := c.QueryService(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOut {
		env := svc.Run(cmd.Context(), desc)
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(env); err != nil {
			return err
		}
		if !env.Success {
			return fmt.Errorf("query failed")
		}
		return nil
	}

	result, err := svc.Execute(cmd.Context(), desc)
	if err != nil {
		return err
	}
	return ui.RenderResult(a.out, result)
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(a *App) *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the SQL a query compiles to without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := flags.descriptor()
			if err != nil {
				return err
			}
			c, err := a.Container(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := c.QueryService(cmd.Context())
			if err != nil {
				return err
			}
			compiled, err := svc.Explain(cmd.Context(), desc)
			if err != nil {
				return err
			}

			ui.PrintHeader("Compiled query", fmt.Sprintf("%s · %s", compiled.Mapping.Table, compiled.Dialect))
			for _, part := range []struct {
				title string
				stmt  domain.Statement
			}{
				{"Base", compiled.Base},
				{"Count", compiled.Count},
				{"Window", compiled.Window},
			} {
				ui.PrintSection(part.title)
				ui.PrintCodeBlock(part.stmt.Query, "sql")
			}

			return ui.PrintMarkdown(paramsMarkdown(compiled.Window.Params))
		},
	}
	flags.register(cmd)

	return cmd
}

// paramsMarkdown lists bind parameters as a markdown table.
func paramsMarkdown(params []domain.Param) string {
	if len(params) == 0 {
		return "_No bind parameters._\n"
	}
	var b strings.Builder
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	for _, p := range params {
		fmt.Fprintf(&b, "| `%s` | `%s` |\n", p.Name, ui.FormatValue(p.Value))
	}
	return b.String()
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.Container(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := c.QueryService(cmd.Context())
			if err != nil {
				return err
			}
			columns, err := svc.Columns(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(columns))
			for i, col := range columns {
				nullable := "no"
				if col.Nullable {
					nullable = "yes"
				}
				rows[i] = []string{col.Name, col.Type, nullable}
			}
			return ui.RenderTable(a.out, []string{"Column", "Type", "Nullable"}, rows)
		},
	}
}
