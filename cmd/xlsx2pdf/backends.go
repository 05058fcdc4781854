// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xlsx2pdf/internal/backend"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List conversion backends and whether they can run here",
	Long: `Backends lists every backend this platform supports in preference order,
whether each one is available, and which backend the current configuration
selects. Nothing is launched.`,
	Args: cobra.NoArgs,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-12s  %-9s  %s\n", "Backend", "Available", "Detail")
	for _, b := range backend.Candidates(cfg.Conversion, logger) {
		available, detail := "yes", ""
		if err := b.Check(); err != nil {
			available, detail = "no", err.Error()
		} else if s, ok := b.(*backend.Soffice); ok {
			detail, _ = s.Locate()
		}
		fmt.Fprintf(w, "%-12s  %-9s  %s\n", b.Name(), available, detail)
	}

	selected := selectBackend(cfg.Conversion, logger)
	fmt.Fprintf(w, "\nSelected: %s (backend: %s)\n", selected.Name(), cfg.Conversion.Backend)
	if err := selected.Check(); err != nil {
		return fmt.Errorf("selected backend %s is not available: %w", selected.Name(), err)
	}
	return nil
}
