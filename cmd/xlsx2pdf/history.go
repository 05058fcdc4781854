// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xlsx2pdf/internal/history"
	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or export the conversion history",
	Long: `History reads the local SQLite log of conversions. Conversions are
recorded when history.enabled is set in the config file, when
XLSX2PDF_HISTORY_ENABLED=true, or when --history is passed.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recorded conversions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := listOptsFromFlags(cmd)
	results, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryOutput(cmd.OutOrStdout(), store.Path(), results, jsonOutput)
}

func formatHistoryOutput(w io.Writer, path string, results []types.ConversionResult, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []types.ConversionResult{}
		}
		return printJSON(w, results)
	}

	if len(results) == 0 {
		fmt.Fprintf(w, "No conversions recorded in %s.\n", path)
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-7s  %-26s  %-30s  %8s  %s\n",
		"Started", "Status", "Kind", "Input", "Millis", "Output")
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "%-20s  %-7s  %-26s  %-30s  %8d  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), status, r.ErrorKind,
			truncate(r.Input, 30), r.DurationMS, r.Output)
	}
	fmt.Fprintf(w, "\n%d conversions in %s\n", len(results), path)
	return nil
}

// truncate shortens s to n runes, keeping the end, which carries the file
// name.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[len(r)-n:])
	}
	return "..." + string(r[len(r)-(n-3):])
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversion history to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := listOptsFromFlags(cmd)
	switch format {
	case "yaml", "":
		if out == "" {
			out = "history.yaml"
		}
		if err := store.ExportYAML(context.Background(), out, opts); err != nil {
			return err
		}
	case "json":
		if out == "" {
			out = "history.json"
		}
		if err := store.ExportJSON(context.Background(), out, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", store.Path(), out)
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	cfg, _, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History.Path)
}

func listOptsFromFlags(cmd *cobra.Command) history.ListOptions {
	limit, _ := cmd.Flags().GetInt("limit")
	failed, _ := cmd.Flags().GetBool("failed")
	return history.ListOptions{Limit: limit, FailedOnly: failed}
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum conversions to show (0 = all)")
	historyListCmd.Flags().Bool("failed", false, "show failed conversions only")
	historyListCmd.Flags().Bool("json", false, "output results as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("out", "", "export file (default: history.yaml or history.json)")
	historyExportCmd.Flags().Int("limit", 0, "maximum conversions to export (0 = all)")
	historyExportCmd.Flags().Bool("failed", false, "export failed conversions only")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
