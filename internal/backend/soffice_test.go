// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	executables map[string]bool   // path -> IsExecutable result
	onPath      map[string]string // name -> LookPath result
	runFunc     func(ctx context.Context, name string, args []string) ([]byte, error)

	calls [][]string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if p, ok := m.onPath[file]; ok {
		return p, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) IsExecutable(path string) bool {
	return m.executables[path]
}

func (m *mockExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.runFunc != nil {
		return m.runFunc(ctx, name, args)
	}
	return nil, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// argAfter returns the argument following flag.
func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// fakeSoffice behaves like soffice --convert-to pdf: it writes
// <outdir>/<stem>.pdf for the last argument.
func fakeSoffice(content string) func(context.Context, string, []string) ([]byte, error) {
	return func(_ context.Context, _ string, args []string) ([]byte, error) {
		outDir := argAfter(args, "--outdir")
		input := args[len(args)-1]
		name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".pdf"
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(content), 0o644); err != nil {
			return nil, err
		}
		return []byte("convert " + input + " -> " + name + " using filter : calc_pdf_Export\n"), nil
	}
}

// newJob creates a workspace with an input file and returns a job for it.
func newJob(t *testing.T, inputName string) Job {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, inputName)
	require.NoError(t, os.WriteFile(input, []byte("spreadsheet"), 0o644))
	work := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))
	return Job{
		InputPath:  input,
		OutputPath: filepath.Join(work, "final.pdf"),
		WorkDir:    work,
		Sheets:     types.SheetsAll,
	}
}

func TestSofficeLocate(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		exec       *mockExecutor
		want       string
		wantErr    bool
	}{
		{
			name: "first known location wins",
			exec: &mockExecutor{executables: map[string]bool{
				"/usr/bin/libreoffice": true,
				"/usr/bin/soffice":     true,
			}},
			want: "/usr/bin/libreoffice",
		},
		{
			name: "macOS bundle",
			exec: &mockExecutor{executables: map[string]bool{
				"/Applications/LibreOffice.app/Contents/MacOS/soffice": true,
			}},
			want: "/Applications/LibreOffice.app/Contents/MacOS/soffice",
		},
		{
			name: "PATH fallback prefers libreoffice",
			exec: &mockExecutor{onPath: map[string]string{
				"libreoffice": "/snap/bin/libreoffice",
				"soffice":     "/opt/lo/soffice",
			}},
			want: "/snap/bin/libreoffice",
		},
		{
			name: "PATH fallback to soffice",
			exec: &mockExecutor{onPath: map[string]string{"soffice": "/opt/lo/soffice"}},
			want: "/opt/lo/soffice",
		},
		{
			name:       "configured path used without probing",
			configured: "/custom/soffice",
			exec: &mockExecutor{executables: map[string]bool{
				"/custom/soffice":      true,
				"/usr/bin/libreoffice": true,
			}},
			want: "/custom/soffice",
		},
		{
			name:       "configured path not executable",
			configured: "/custom/soffice",
			exec: &mockExecutor{executables: map[string]bool{
				"/usr/bin/libreoffice": true,
			}},
			wantErr: true,
		},
		{
			name:    "nothing installed",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSoffice(tt.configured, tt.exec, quietLogger())
			got, err := s.Locate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, types.ErrBackendUnavailable, types.KindOf(err))
				assert.Equal(t, err, s.Check())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, s.Check())
		})
	}
}

func TestSofficeExport_Success(t *testing.T) {
	job := newJob(t, "report.xlsx")
	exec := &mockExecutor{
		executables: map[string]bool{"/usr/bin/soffice": true},
		runFunc:     fakeSoffice("%PDF-1.4 fake"),
	}
	s := newSoffice("", exec, quietLogger())

	require.NoError(t, s.Export(context.Background(), job))

	data, err := os.ReadFile(job.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	_, err = os.Stat(filepath.Join(job.WorkDir, "out", "report.pdf"))
	assert.True(t, os.IsNotExist(err), "auto-named output should have been moved")

	require.Len(t, exec.calls, 1)
	call := exec.calls[0]
	assert.Equal(t, "/usr/bin/soffice", call[0])
	assert.True(t, strings.HasPrefix(call[1], "-env:UserInstallation=file:///"), "profile arg: %s", call[1])
	assert.Contains(t, call, "--headless")
	assert.Equal(t, "pdf", argAfter(call, "--convert-to"))
	assert.Equal(t, filepath.Join(job.WorkDir, "out"), argAfter(call, "--outdir"))
	assert.Equal(t, job.InputPath, call[len(call)-1])
}

func TestSofficeExport_Failures(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantKind types.ErrorKind
		wantMsg  string
	}{
		{
			name:     "binary not found",
			exec:     &mockExecutor{},
			wantKind: types.ErrBackendUnavailable,
		},
		{
			name: "timeout",
			exec: &mockExecutor{
				executables: map[string]bool{"/usr/bin/libreoffice": true},
				runFunc: func(context.Context, string, []string) ([]byte, error) {
					return nil, context.DeadlineExceeded
				},
			},
			wantKind: types.ErrProcessTimeout,
		},
		{
			name: "interrupted",
			exec: &mockExecutor{
				executables: map[string]bool{"/usr/bin/libreoffice": true},
				runFunc: func(context.Context, string, []string) ([]byte, error) {
					return nil, context.Canceled
				},
			},
			wantKind: types.ErrUnexpected,
			wantMsg:  "libreoffice interrupted",
		},
		{
			name: "non-zero exit keeps console output",
			exec: &mockExecutor{
				executables: map[string]bool{"/usr/bin/libreoffice": true},
				runFunc: func(context.Context, string, []string) ([]byte, error) {
					out := "Error: source file could not be loaded"
					return []byte(out), &ExitError{Code: 81, Output: out}
				},
			},
			wantKind: types.ErrProcessNonZeroExit,
			wantMsg:  "source file could not be loaded",
		},
		{
			name: "clean exit without output file",
			exec: &mockExecutor{
				executables: map[string]bool{"/usr/bin/libreoffice": true},
				runFunc: func(context.Context, string, []string) ([]byte, error) {
					return []byte("Error: no export filter"), nil
				},
			},
			wantKind: types.ErrOutputMissing,
			wantMsg:  "no export filter",
		},
		{
			name: "start failure",
			exec: &mockExecutor{
				executables: map[string]bool{"/usr/bin/libreoffice": true},
				runFunc: func(context.Context, string, []string) ([]byte, error) {
					return nil, errors.New("fork/exec: permission denied")
				},
			},
			wantKind: types.ErrUnexpected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := newJob(t, "report.xlsx")
			s := newSoffice("", tt.exec, quietLogger())

			err := s.Export(context.Background(), job)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, types.KindOf(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			_, statErr := os.Stat(job.OutputPath)
			assert.True(t, os.IsNotExist(statErr), "no output expected on failure")
		})
	}
}

func TestSofficeExport_FirstSheet(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	input := filepath.Join(dir, "book.xlsx")
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	work := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))
	job := Job{
		InputPath:  input,
		OutputPath: filepath.Join(work, "book.pdf"),
		WorkDir:    work,
		Sheets:     types.SheetsFirst,
	}

	var converted string
	exec := &mockExecutor{
		executables: map[string]bool{"/usr/bin/libreoffice": true},
		runFunc: func(ctx context.Context, name string, args []string) ([]byte, error) {
			converted = args[len(args)-1]
			return fakeSoffice("%PDF-1.4")(ctx, name, args)
		},
	}
	s := newSoffice("", exec, quietLogger())
	require.NoError(t, s.Export(context.Background(), job))

	assert.NotEqual(t, input, converted, "a trimmed copy should be converted")
	f, err = excelize.OpenFile(converted)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	assert.FileExists(t, job.OutputPath)
}

func TestSofficeExport_FirstSheetNonOOXML(t *testing.T) {
	job := newJob(t, "legacy.xls")
	job.Sheets = types.SheetsFirst

	exec := &mockExecutor{
		executables: map[string]bool{"/usr/bin/libreoffice": true},
		runFunc:     fakeSoffice("%PDF-1.4"),
	}
	s := newSoffice("", exec, quietLogger())
	require.NoError(t, s.Export(context.Background(), job))

	require.Len(t, exec.calls, 1)
	assert.Equal(t, job.InputPath, exec.calls[0][len(exec.calls[0])-1], "non-OOXML input is converted as-is")
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "file:///tmp/work/profile", fileURL("/tmp/work/profile"))
	assert.Equal(t, "file:///tmp/my%20work", fileURL("/tmp/my work"))
}

func TestOutputErr(t *testing.T) {
	assert.Nil(t, outputErr([]byte("  \n")))

	long := strings.Repeat("x", outputTail+100) + "tail"
	err := outputErr([]byte(long))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "..."))
	assert.True(t, strings.HasSuffix(err.Error(), "tail"))
}
