// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xlsx2pdf/internal/convert"
)

var batchCmd = &cobra.Command{
	Use:   "batch --out-dir DIR [files...]",
	Short: "Convert several spreadsheets into one directory",
	Long: `Batch converts each file to <out-dir>/<name>.pdf, one at a time. Files
whose PDF already exists are skipped unless --force is set. A summary line
follows the per-file status lines; any failure makes the command exit 1.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("out-dir", "", "directory for the PDFs (created when missing)")
	batchCmd.Flags().Bool("force", false, "reconvert files whose PDF already exists")
	_ = batchCmd.MarkFlagRequired("out-dir")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	force, _ := cmd.Flags().GetBool("force")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := convert.New(selectBackend(cfg.Conversion, logger), cfg.Conversion, logger)
	result := conv.ConvertBatch(ctx, args, outDir, force, cmd.OutOrStdout())
	recordHistory(ctx, cfg, logger, result.Results...)

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
