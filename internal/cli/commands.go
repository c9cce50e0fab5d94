package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/partspec/internal/core"
	"github.com/JonMunkholm/partspec/internal/store"
)

// errNoDatabase is returned by publish without DATABASE_URL.
var errNoDatabase = errors.New("publishing disabled: DATABASE_URL is not set")

func newExportCommand() *cobra.Command {
	var out, series string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the enum schema",
		Long: `Export the specification as the enum cross-referenced schema.

Without --series the whole table is exported grouped by classification.
With --series a single series is exported as {"Series": [...]}.`,
		Example: `  # Whole table to stdout
  partspec export spec.xlsx

  # One series to a file
  partspec export spec.xlsx --series 볼트 -o bolt.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, args[0])
			if err != nil {
				return err
			}

			var v any
			if series != "" {
				schema, err := svc.ExportSeries(series)
				if err != nil {
					return err
				}
				v = schema
			} else {
				v = svc.Export()
			}

			if out == "" {
				return writeJSON(cmd, v)
			}
			data, err := core.EncodeJSON(v)
			if err != nil {
				return fmt.Errorf("encode series %s: %w", series, err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&series, "series", "", "export a single series")
	return cmd
}

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog <file>",
		Short: "List classifications and their series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, svc.Catalog())
		},
	}
}

func newTreeCommand() *cobra.Command {
	var series string

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Dump the hierarchy tree of a series",
		Long:  `Dump the hierarchy tree of a series. Without --series the whole table is used.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, args[0])
			if err != nil {
				return err
			}
			t, err := svc.Tree(series)
			if err != nil {
				return err
			}
			return writeJSON(cmd, t.Dump())
		},
	}

	cmd.Flags().StringVar(&series, "series", "", "series name")
	return cmd
}

func newValuesCommand() *cobra.Command {
	var series, column string
	var selects []string

	cmd := &cobra.Command{
		Use:   "values <file>",
		Short: "List the values available at a column",
		Example: `  # Materials of hex bolts
  partspec values spec.xlsx --series 볼트 --column 재질 --select 종류=육각`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, args[0])
			if err != nil {
				return err
			}
			col, err := svc.ColumnIndex(column)
			if err != nil {
				return err
			}
			path, err := parseSelection(svc, selects)
			if err != nil {
				return err
			}
			values, err := svc.AvailableValues(series, path, col)
			if err != nil {
				return err
			}
			if values == nil {
				values = []string{}
			}
			return writeJSON(cmd, values)
		},
	}

	cmd.Flags().StringVar(&series, "series", "", "series name")
	cmd.Flags().StringVar(&column, "column", "", "column name or index")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "selected value as column=value (repeatable)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newLeafCommand() *cobra.Command {
	var series string
	var selects []string

	cmd := &cobra.Command{
		Use:   "leaf <file>",
		Short: "Resolve a selection path",
		Long: `Resolve a selection path. An incomplete path reports the next column and
its values; a complete path reports the leaf attributes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, args[0])
			if err != nil {
				return err
			}
			path, err := parseSelection(svc, selects)
			if err != nil {
				return err
			}
			res, err := svc.Resolve(series, path)
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}

	cmd.Flags().StringVar(&series, "series", "", "series name")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "selected value as column=value (repeatable)")
	return cmd
}

func newTypesCommand() *cobra.Command {
	var column, kind string

	cmd := &cobra.Command{
		Use:   "types <file>",
		Short: "List standard bodies or the standards of one body",
		Example: `  # KS, JIS, ...
  partspec types spec.xlsx

  # Every KS standard in the sheet
  partspec types spec.xlsx --type KS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, args[0])
			if err != nil {
				return err
			}
			if column == "" {
				column = svc.Layout().StandardColumn
			}
			col, err := svc.ColumnIndex(column)
			if err != nil {
				return err
			}

			table := svc.Workbook().Table
			if kind != "" {
				return writeJSON(cmd, core.StandardsByType(table, col, kind))
			}
			return writeJSON(cmd, core.StandardTypes(table, col))
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "standard column (default: layout standard column)")
	cmd.Flags().StringVar(&kind, "type", "", "list the standards of this body")
	return cmd
}

func newPublishCommand() *cobra.Command {
	var series string

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Store a series export in PostgreSQL",
		Long:  `Export one series and upsert it into the part_spec table. Requires DATABASE_URL.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			if !cfg.Database.Enabled() {
				return errNoDatabase
			}

			svc, err := openService(cmd, args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := store.New(pool)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}

			rec, err := svc.Publish(ctx, series, repo)
			if err != nil {
				return err
			}
			spec, err := repo.Get(ctx, rec.PartCode)
			if err != nil {
				return err
			}
			spec.SpecData = nil
			return writeJSON(cmd, spec)
		},
	}

	cmd.Flags().StringVar(&series, "series", "", "series name")
	_ = cmd.MarkFlagRequired("series")
	return cmd
}

// parseSelection turns column=value pairs into a path. Columns are header
// names or indexes.
func parseSelection(svc *core.Service, pairs []string) (core.SelectionPath, error) {
	sel := make(map[int]string, len(pairs))
	for _, p := range pairs {
		ref, value, ok := strings.Cut(p, "=")
		if !ok {
			return core.SelectionPath{}, fmt.Errorf("selection %q is not column=value", p)
		}
		col, err := svc.ColumnIndex(ref)
		if err != nil {
			return core.SelectionPath{}, err
		}
		sel[col] = value
	}
	return core.NewSelectionPath(sel), nil
}
