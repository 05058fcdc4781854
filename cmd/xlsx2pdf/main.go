// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the xlsx2pdf CLI. The root command
// converts one spreadsheet; batch, fill, backends, history, and version
// are subcommands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/xlsx2pdf/internal/backend"
	"github.com/pdiddy/xlsx2pdf/internal/convert"
	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// selectBackend picks the backend for a conversion command.
var selectBackend = backend.Select

// rootCmd converts a single spreadsheet and hosts the subcommands.
var rootCmd = &cobra.Command{
	Use:   "xlsx2pdf <input-file> <output-file>",
	Short: "Convert spreadsheets to PDF through LibreOffice or Excel",
	Long: `xlsx2pdf converts a spreadsheet to PDF by driving an installed office
application: LibreOffice in headless mode on every platform, or Excel through
COM automation on Windows. The output directory is created when missing, and
a failed or timed-out conversion never leaves a partial file at the output
path.

Exit status is 0 on success and 1 on any failure.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./xlsx2pdf.yaml or ~/.config/xlsx2pdf/xlsx2pdf.yaml)")
	pf.Duration("timeout", types.DefaultTimeout, "maximum time to wait for the office application")
	pf.String("backend", string(types.BackendAuto), "conversion backend: auto, libreoffice, or excel")
	pf.String("sheets", string(types.SheetsAll), "worksheets to export: all or first")
	pf.String("soffice-path", "", "LibreOffice binary to use instead of searching for one")
	pf.Bool("no-verify", false, "skip parsing the produced PDF")
	pf.Bool("history", false, "record conversions in the history database")
	pf.String("log-level", "info", "log level: debug, info, warn, or error")
	pf.BoolP("verbose", "v", false, "shorthand for --log-level debug")

	rootCmd.Flags().Bool("json", false, "print the conversion result as JSON on stdout")

	bindFlags(pf)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("xlsx2pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "xlsx2pdf"))
		}
	}

	viper.SetEnvPrefix("XLSX2PDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := convert.New(selectBackend(cfg.Conversion, logger), cfg.Conversion, logger)
	res, convErr := conv.Convert(ctx, types.ConversionRequest{InputPath: args[0], OutputPath: args[1]})
	recordHistory(ctx, cfg, logger, res)

	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else if convErr == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "converted: %s -> %s\n", res.Input, res.Output)
	}
	return convErr
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// execute runs the command line and returns the process exit status.
func execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute())
}
