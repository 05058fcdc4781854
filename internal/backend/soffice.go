// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/xlsx2pdf/internal/workbook"
	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// outputTail is how much of the LibreOffice console output is kept in
// error messages.
const outputTail = 2048

// sofficeCandidates lists well-known install locations, probed in order
// before falling back to PATH.
var sofficeCandidates = []string{
	"/usr/bin/libreoffice",
	"/usr/local/bin/libreoffice",
	"/usr/bin/soffice",
	"/usr/local/bin/soffice",
	"/opt/homebrew/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	`C:\Program Files\LibreOffice\program\soffice.exe`,
}

var sofficePathNames = []string{"libreoffice", "soffice"}

// Soffice converts spreadsheets with LibreOffice in headless mode.
type Soffice struct {
	path   string // configured binary; empty means probe
	exec   executor
	logger *slog.Logger
}

// newSoffice creates a LibreOffice backend. When path is non-empty it is
// used as the binary and discovery is skipped.
func newSoffice(path string, exec executor, logger *slog.Logger) *Soffice {
	if logger == nil {
		logger = slog.Default()
	}
	return &Soffice{path: path, exec: exec, logger: logger.With(slog.String("backend", nameLibreOffice))}
}

func (s *Soffice) Name() string { return nameLibreOffice }

func (s *Soffice) Check() error {
	_, err := s.Locate()
	return err
}

// Locate returns the LibreOffice binary Export would run.
func (s *Soffice) Locate() (string, error) {
	if s.path != "" {
		if s.exec.IsExecutable(s.path) {
			return s.path, nil
		}
		return "", types.NewError(types.ErrBackendUnavailable, "locate libreoffice",
			fmt.Errorf("configured soffice_path %s is not an executable file", s.path))
	}

	for _, p := range sofficeCandidates {
		if s.exec.IsExecutable(p) {
			return p, nil
		}
	}
	for _, name := range sofficePathNames {
		if p, err := s.exec.LookPath(name); err == nil {
			return p, nil
		}
	}

	return "", types.NewError(types.ErrBackendUnavailable, "locate libreoffice",
		fmt.Errorf("no binary in known locations or on PATH (%s)", strings.Join(sofficePathNames, ", ")))
}

// Export runs soffice --convert-to pdf into WorkDir/out and moves the
// auto-named result onto job.OutputPath.
func (s *Soffice) Export(ctx context.Context, job Job) error {
	bin, err := s.Locate()
	if err != nil {
		return err
	}

	input, err := s.prepareInput(job)
	if err != nil {
		return err
	}

	outDir := filepath.Join(job.WorkDir, "out")
	profileDir := filepath.Join(job.WorkDir, "profile")
	for _, dir := range []string{outDir, profileDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.NewError(types.ErrUnexpected, "creating "+dir, err)
		}
	}

	// A private profile keeps parallel conversions from fighting over the
	// user's LibreOffice lock file.
	args := []string{
		"-env:UserInstallation=" + fileURL(profileDir),
		"--headless",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		input,
	}
	s.logger.Debug("running", slog.String("bin", bin), slog.Any("args", args))

	out, err := s.exec.Run(ctx, bin, args...)
	if err != nil {
		return classifyRun(nameLibreOffice, out, err)
	}

	produced := filepath.Join(outDir, stem(input)+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return types.NewError(types.ErrOutputMissing,
			fmt.Sprintf("libreoffice exited cleanly but wrote no %s", filepath.Base(produced)), outputErr(out))
	}
	if err := os.Rename(produced, job.OutputPath); err != nil {
		return types.NewError(types.ErrUnexpected, "moving libreoffice output", err)
	}
	return nil
}

// prepareInput returns the file soffice should convert. LibreOffice always
// exports every sheet, so first-sheet jobs get a trimmed copy.
func (s *Soffice) prepareInput(job Job) (string, error) {
	if job.Sheets != types.SheetsFirst {
		return job.InputPath, nil
	}
	if !workbook.Supports(job.InputPath) {
		s.logger.Warn("first-sheet export needs an OOXML workbook; exporting all sheets",
			slog.String("input", job.InputPath))
		return job.InputPath, nil
	}

	dst := filepath.Join(job.WorkDir, "first-sheet", filepath.Base(job.InputPath))
	sheet, err := workbook.FirstSheetCopy(job.InputPath, dst)
	if err != nil {
		return "", types.NewError(types.ErrUnexpected, "trimming workbook to its first sheet", err)
	}
	s.logger.Debug("exporting first sheet only", slog.String("sheet", sheet))
	return dst, nil
}

// classifyRun maps an executor error to its ErrorKind.
func classifyRun(name string, out []byte, err error) error {
	var exitErr *ExitError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return types.NewError(types.ErrProcessTimeout, name+" did not finish in time", err)
	case errors.Is(err, context.Canceled):
		return types.NewError(types.ErrUnexpected, name+" interrupted", err)
	case errors.As(err, &exitErr):
		return types.NewError(types.ErrProcessNonZeroExit,
			fmt.Sprintf("%s exited with code %d", name, exitErr.Code), outputErr([]byte(exitErr.Output)))
	default:
		return types.NewError(types.ErrUnexpected, "starting "+name, err)
	}
}

// outputErr turns the tail of console output into an error, or nil when
// there was no output.
func outputErr(out []byte) error {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return nil
	}
	if len(s) > outputTail {
		s = "..." + s[len(s)-outputTail:]
	}
	return errors.New(s)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileURL renders path as a file:// URL, which is what
// -env:UserInstallation expects on every platform.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
