// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xlsx2pdf/internal/convert"
	"github.com/pdiddy/xlsx2pdf/internal/workbook"
	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

var fillCmd = &cobra.Command{
	Use:   "fill <template> <output.pdf>",
	Short: "Fill cells in a template workbook and convert it to PDF",
	Long: `Fill copies a template workbook, sets the cells given with --set, and
converts the filled copy to PDF. Cells are addressed as A1 (first sheet) or
Sheet!A1.

--name replaces the output file name with a sanitized form of NAME, keeping
the output directory. Use it to name certificates after a serial number.

Example:
  xlsx2pdf fill certificate.xlsx out/cert.pdf \
    --set F10="Jane Doe" --set F12=2026-03-14 --name SN-00042`,
	Args: cobra.ExactArgs(2),
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringArray("set", nil, "cell assignment CELL=VALUE (repeatable)")
	fillCmd.Flags().String("keep-xlsx", "", "also keep the filled workbook at this path")
	fillCmd.Flags().String("name", "", "output file name, sanitized, without extension")
	fillCmd.Flags().Bool("json", false, "print the conversion result as JSON on stdout")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	sets, _ := cmd.Flags().GetStringArray("set")
	keep, _ := cmd.Flags().GetString("keep-xlsx")
	name, _ := cmd.Flags().GetString("name")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cells, err := parseAssignments(sets)
	if err != nil {
		return err
	}

	template := args[0]
	if _, err := os.Stat(template); err != nil {
		return types.NewError(types.ErrInputNotFound, "template "+template, err)
	}
	if !workbook.Supports(template) {
		return fmt.Errorf("template %s is not an .xlsx, .xlsm, .xltx, or .xltm workbook", template)
	}

	output, err := fillOutputPath(args[1], name)
	if err != nil {
		return err
	}

	filled := keep
	if filled == "" {
		tmp, err := os.MkdirTemp("", "xlsx2pdf-fill-")
		if err != nil {
			return fmt.Errorf("creating temp directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		filled = filepath.Join(tmp, strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))+".xlsx")
	}
	if err := workbook.Fill(template, filled, cells); err != nil {
		return fmt.Errorf("filling template: %w", err)
	}
	logger.Debug("template filled", slog.Int("cells", len(cells)), slog.String("workbook", filled))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := convert.New(selectBackend(cfg.Conversion, logger), cfg.Conversion, logger)
	res, convErr := conv.Convert(ctx, types.ConversionRequest{InputPath: filled, OutputPath: output})
	recordHistory(ctx, cfg, logger, res)

	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else if convErr == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "converted: %s -> %s\n", template, res.Output)
	}
	return convErr
}

// unsafeName matches every character not allowed in a generated file name.
var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

func sanitizeName(name string) string {
	return unsafeName.ReplaceAllString(name, "_")
}

// fillOutputPath returns output, or a file named after name in output's
// directory when name is set.
func fillOutputPath(output, name string) (string, error) {
	if name == "" {
		return output, nil
	}
	clean := sanitizeName(strings.TrimSpace(name))
	if clean == "" {
		return "", fmt.Errorf("--name %q is empty after trimming", name)
	}
	return filepath.Join(filepath.Dir(output), clean+".pdf"), nil
}

// parseAssignments turns CELL=VALUE pairs into a cell map. Values may
// contain '='; cells may not be empty.
func parseAssignments(sets []string) (map[string]string, error) {
	cells := make(map[string]string, len(sets))
	for _, s := range sets {
		cell, value, ok := strings.Cut(s, "=")
		cell = strings.TrimSpace(cell)
		if !ok || cell == "" {
			return nil, fmt.Errorf("invalid --set %q: want CELL=VALUE", s)
		}
		if _, dup := cells[cell]; dup {
			return nil, fmt.Errorf("cell %s set more than once", cell)
		}
		cells[cell] = value
	}
	return cells, nil
}
