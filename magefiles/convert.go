//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts the sample workbooks, exercising
// both the plain conversion and the template fill. Needs LibreOffice.
func Convert() error {
	mg.Deps(Build, Sample)

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "backends"); err != nil {
		return err
	}
	if err := sh.RunV(bin, filepath.Join(samplesDir, "report.xlsx"), filepath.Join(outDir, "report.pdf")); err != nil {
		return err
	}
	return sh.RunV(bin, "fill",
		filepath.Join(samplesDir, "certificate.xlsx"), filepath.Join(outDir, "certificate.pdf"),
		"--set", "F10=Acme Instruments",
		"--set", "F12=Pressure gauge PG-200",
		"--set", "F13=PG200-7781",
		"--set", "F16=2026-03-14",
		"--name", "PG200-7781",
		"--sheets", "first")
}
