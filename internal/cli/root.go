// Package cli provides the partspec command-line interface.
//
// Every command reads one specification file, runs a single operation and
// writes JSON to stdout. Logs go to stderr so output can be piped.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/partspec/internal/config"
	"github.com/JonMunkholm/partspec/internal/core"
	_ "github.com/JonMunkholm/partspec/internal/core/profiles" // Register layouts
	"github.com/JonMunkholm/partspec/internal/logging"
	"github.com/JonMunkholm/partspec/internal/source"
)

// Version information (set at build time).
var Version = "0.1.0"

// configKey is used to store config in context.
type configKey struct{}

// rootFlags are the persistent flags shared by all commands. Empty values
// keep the environment configuration.
type rootFlags struct {
	specSheet  string
	codeSheet  string
	encoding   string
	layout     string
	layoutFile string
	logLevel   string
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "partspec",
		Short: "Cascading part specification tool",
		Long: `partspec reads a part specification workbook (xlsx or csv), answers
cascading selection queries and exports the enum schema consumed by the
rules engine.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logging.SetupTo(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.specSheet, "sheet", "", "worksheet holding the specification (default: $SHEET_SPEC_NAME)")
	pf.StringVar(&flags.codeSheet, "code-sheet", "", "worksheet holding series codes (default: $SHEET_CODE_NAME)")
	pf.StringVar(&flags.encoding, "encoding", "", "CSV encoding: utf-8 or euc-kr")
	pf.StringVar(&flags.layout, "layout", "", "registered layout name")
	pf.StringVar(&flags.layoutFile, "layout-file", "", "YAML file overriding the layout")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	_ = rootCmd.RegisterFlagCompletionFunc("encoding", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"utf-8", "euc-kr"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("layout", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return core.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newTreeCommand())
	rootCmd.AddCommand(newValuesCommand())
	rootCmd.AddCommand(newLeafCommand())
	rootCmd.AddCommand(newTypesCommand())
	rootCmd.AddCommand(newPublishCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return report(os.Stderr, NewRootCmd().Execute())
}

// report prints err to w. Known errors are returned as *core.UserError and
// get their user message and code printed as well.
func report(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if !core.IsUserFacing(err) {
		return err
	}

	userErr := core.NewUserError(err)
	fmt.Fprintf(w, "%s (Code: %s). %s\n", userErr.User.Message, userErr.User.Code, userErr.User.Action)
	return userErr
}

func (f rootFlags) apply(cfg *config.Config) {
	if f.specSheet != "" {
		cfg.Sheet.SpecSheet = f.specSheet
	}
	if f.codeSheet != "" {
		cfg.Sheet.CodeSheet = f.codeSheet
	}
	if f.encoding != "" {
		cfg.Sheet.Encoding = f.encoding
	}
	if f.layout != "" {
		cfg.Sheet.LayoutName = f.layout
	}
	if f.layoutFile != "" {
		cfg.Sheet.LayoutFile = f.layoutFile
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.MustLoad()
}

// openService reads path with the configured sheet settings and layout.
func openService(cmd *cobra.Command, path string) (*core.Service, error) {
	cfg := configFrom(cmd)

	layout, err := cfg.Sheet.Layout()
	if err != nil {
		return nil, err
	}

	wb, err := source.Open(cmd.Context(), path, source.OptionsFromConfig(cfg.Sheet))
	if err != nil {
		return nil, err
	}

	logging.FromContext(cmd.Context()).Debug("specification loaded",
		"source", wb.Source,
		"rows", wb.Table.Len(),
		"layout", layout.Name,
	)
	return core.NewService(wb, layout)
}

// writeJSON prints v to the command's stdout in the export encoding.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := core.EncodeJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
