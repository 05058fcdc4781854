// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend runs spreadsheet-to-PDF conversions through an installed
// office application: LibreOffice in headless mode everywhere, and Excel
// through COM automation on Windows.
package backend

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

const (
	nameLibreOffice = "libreoffice"
	nameExcel       = "excel"
)

// Backend exports a spreadsheet to PDF by driving an external application.
type Backend interface {
	// Name identifies the backend in logs and results.
	Name() string

	// Check reports why the backend cannot run on this host, or nil when
	// it can. It never launches the application. A non-nil error has
	// kind BackendUnavailable.
	Check() error

	// Export converts job.InputPath and leaves the PDF at job.OutputPath.
	// Failures are *types.ConversionError values.
	Export(ctx context.Context, job Job) error
}

// Job is a single export handed to a Backend.
type Job struct {
	// InputPath is the absolute path of the spreadsheet.
	InputPath string

	// OutputPath is the absolute path the PDF must be written to.
	OutputPath string

	// WorkDir is a scratch directory owned by the caller for the duration
	// of the export. Backends may create files and subdirectories in it.
	WorkDir string

	// Sheets selects the worksheets to export.
	Sheets types.SheetScope
}

var defaultExec = &osExecutor{}

// Select builds the backend named by cfg.Backend. It does not probe the
// host: a backend that cannot run reports BackendUnavailable from Check
// and Export.
func Select(cfg types.ConversionConfig, logger *slog.Logger) Backend {
	return selectFor(runtime.GOOS, cfg, logger, defaultExec)
}

func selectFor(goos string, cfg types.ConversionConfig, logger *slog.Logger, exec executor) Backend {
	soffice := newSoffice(cfg.SofficePath, exec, logger)
	switch cfg.Backend {
	case types.BackendLibreOffice:
		return soffice
	case types.BackendExcel:
		return NewExcel(logger)
	}
	if goos == "windows" {
		return NewChain(logger, NewExcel(logger), soffice)
	}
	return soffice
}

// Candidates lists every backend this host could use, in preference
// order, regardless of cfg.Backend.
func Candidates(cfg types.ConversionConfig, logger *slog.Logger) []Backend {
	return candidatesFor(runtime.GOOS, cfg, logger, defaultExec)
}

func candidatesFor(goos string, cfg types.ConversionConfig, logger *slog.Logger, exec executor) []Backend {
	soffice := newSoffice(cfg.SofficePath, exec, logger)
	if goos == "windows" {
		return []Backend{NewExcel(logger), soffice}
	}
	return []Backend{soffice}
}
