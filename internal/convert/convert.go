// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert orchestrates spreadsheet-to-PDF conversions: it checks
// the request, stages the backend's output, verifies it, and moves it onto
// the requested path.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/xlsx2pdf/internal/backend"
	"github.com/pdiddy/xlsx2pdf/internal/pdfcheck"
	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// stagingPrefix names the per-conversion scratch directory created next
// to the output file.
const stagingPrefix = ".xlsx2pdf-"

// Converter runs conversions through a single Backend.
type Converter struct {
	Backend backend.Backend

	// Timeout applies when a request carries none. Zero means
	// types.DefaultTimeout.
	Timeout time.Duration

	Sheets types.SheetScope

	// VerifyPDF parses the produced file and rejects it when it is not a
	// PDF with at least one page.
	VerifyPDF bool

	Logger *slog.Logger
}

// New builds a Converter for b from the conversion settings in cfg.
func New(b backend.Backend, cfg types.ConversionConfig, logger *slog.Logger) *Converter {
	return &Converter{
		Backend:   b,
		Timeout:   cfg.Timeout,
		Sheets:    cfg.Sheets,
		VerifyPDF: cfg.VerifyPDF,
		Logger:    logger,
	}
}

// Convert produces req.OutputPath from req.InputPath. The result is always
// populated; err is a *types.ConversionError when the conversion failed.
func (c *Converter) Convert(ctx context.Context, req types.ConversionRequest) (res types.ConversionResult, err error) {
	logger := c.logger()
	started := time.Now()
	res = types.ConversionResult{
		ID:        uuid.NewString(),
		Input:     req.InputPath,
		Output:    req.OutputPath,
		StartedAt: started.UTC(),
	}
	if c.Backend != nil {
		res.Backend = c.Backend.Name()
	}

	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.ErrUnexpected, "conversion panicked", fmt.Errorf("%v", r))
		}
		res.DurationMS = time.Since(started).Milliseconds()
		if err != nil {
			res.Success = false
			res.Pages = 0
			res.ErrorKind = types.KindOf(err)
			res.Error = err.Error()
			logger.Error("conversion failed",
				slog.String("id", res.ID),
				slog.String("kind", string(res.ErrorKind)),
				slog.String("input", res.Input),
				slog.String("error", res.Error))
			return
		}
		res.Success = true
		logger.Info("converted",
			slog.String("id", res.ID),
			slog.String("input", res.Input),
			slog.String("output", res.Output),
			slog.String("backend", res.Backend),
			slog.Int64("duration_ms", res.DurationMS))
	}()

	pages, err := c.convert(ctx, req, logger.With(slog.String("id", res.ID)))
	if err == nil {
		res.Pages = pages
	}
	return res, err
}

func (c *Converter) convert(ctx context.Context, req types.ConversionRequest, logger *slog.Logger) (int, error) {
	input, err := filepath.Abs(req.InputPath)
	if err != nil {
		return 0, types.NewError(types.ErrInputNotFound, "resolving input path", err)
	}
	info, err := os.Stat(input)
	if err != nil {
		return 0, types.NewError(types.ErrInputNotFound, "input "+req.InputPath, err)
	}
	if info.IsDir() {
		return 0, types.NewError(types.ErrInputNotFound, "input "+req.InputPath+" is a directory", nil)
	}

	output, err := filepath.Abs(req.OutputPath)
	if err != nil {
		return 0, types.NewError(types.ErrUnexpected, "resolving output path", err)
	}

	if c.Backend == nil {
		return 0, types.NewError(types.ErrBackendUnavailable, "no conversion backend configured", nil)
	}
	if err := c.Backend.Check(); err != nil {
		if types.KindOf(err) == types.ErrBackendUnavailable {
			return 0, err
		}
		return 0, types.NewError(types.ErrBackendUnavailable, c.Backend.Name()+" cannot run", err)
	}
	logger.Debug("backend selected", slog.String("backend", c.Backend.Name()))

	outDir := filepath.Dir(output)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, types.NewError(types.ErrUnexpected, "creating output directory", err)
	}
	staging := filepath.Join(outDir, stagingPrefix+uuid.NewString())
	if err := os.Mkdir(staging, 0o755); err != nil {
		return 0, types.NewError(types.ErrUnexpected, "creating staging directory", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("could not remove staging directory", slog.String("path", staging), slog.String("error", err.Error()))
		}
	}()

	timeout := c.timeout(req.Timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	staged := filepath.Join(staging, stem(input)+".pdf")
	job := backend.Job{
		InputPath:  input,
		OutputPath: staged,
		WorkDir:    staging,
		Sheets:     c.Sheets,
	}
	logger.Debug("running backend", slog.String("input", input), slog.Duration("timeout", timeout))
	if err := c.Backend.Export(ctx, job); err != nil {
		var ce *types.ConversionError
		if !errors.As(err, &ce) {
			err = types.NewError(types.ErrUnexpected, c.Backend.Name()+" export", err)
		}
		return 0, err
	}

	pages, err := c.verify(staged)
	if err != nil {
		return 0, err
	}

	if err := os.Rename(staged, output); err != nil {
		return 0, types.NewError(types.ErrUnexpected, "moving PDF into place", err)
	}
	return pages, nil
}

// verify checks the staged PDF and returns its page count, or zero when
// VerifyPDF is off.
func (c *Converter) verify(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, types.NewError(types.ErrOutputMissing, "backend reported success but wrote no PDF", err)
	}
	if info.Size() == 0 {
		return 0, types.NewError(types.ErrOutputMissing, "backend wrote an empty PDF", nil)
	}
	if !c.VerifyPDF {
		return 0, nil
	}
	pages, err := pdfcheck.Pages(path)
	if err != nil {
		return 0, types.NewError(types.ErrOutputMissing, "backend output is not a usable PDF", err)
	}
	return pages, nil
}

func (c *Converter) timeout(requested time.Duration) time.Duration {
	switch {
	case requested > 0:
		return requested
	case c.Timeout > 0:
		return c.Timeout
	default:
		return types.DefaultTimeout
	}
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int

	// Results holds one entry per attempted conversion; skipped inputs
	// have none.
	Results []types.ConversionResult
}

// Total returns the total number of inputs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any input failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch converts each input to outDir/<stem>.pdf, printing
// per-file status to w and returning a summary. Existing PDFs are skipped
// unless force is set. An input whose stem matches an earlier input's
// fails instead of overwriting that input's PDF.
func (c *Converter) ConvertBatch(ctx context.Context, inputs []string, outDir string, force bool, w io.Writer) BatchResult {
	var result BatchResult
	// claimed maps each target PDF to the first input of this run that
	// produces it.
	claimed := make(map[string]string, len(inputs))
	for _, in := range inputs {
		base := stem(in)
		out := filepath.Join(outDir, base+".pdf")

		key := filepath.Clean(out)
		if first, ok := claimed[key]; ok {
			fmt.Fprintf(w, "failed:  %s (name collides with %s)\n", base, first)
			result.Failed++
			continue
		}
		claimed[key] = in

		if !force {
			if _, err := os.Stat(out); err == nil {
				fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
				result.Skipped++
				continue
			}
		}

		res, err := c.Convert(ctx, types.ConversionRequest{InputPath: in, OutputPath: out})
		result.Results = append(result.Results, res)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s\n", base)
		result.Converted++
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
