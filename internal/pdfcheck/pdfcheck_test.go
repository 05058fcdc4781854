// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalPDF builds a valid PDF with the given number of blank pages and
// a correct cross-reference table.
func minimalPDF(pages int) []byte {
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
	}
	for i := 0; i < pages; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objs)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPages(t *testing.T) {
	for _, want := range []int{1, 3} {
		t.Run(fmt.Sprintf("%d pages", want), func(t *testing.T) {
			path := writeFile(t, "doc.pdf", minimalPDF(want))
			got, err := Pages(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("pages = %d, want %d", got, want)
			}
		})
	}
}

func TestPages_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		missing bool
		wantMsg string
	}{
		{name: "missing file", missing: true, wantMsg: "opening"},
		{name: "empty file", data: []byte{}, wantMsg: "is empty"},
		{name: "not a pdf", data: []byte("PK\x03\x04 zip archive"), wantMsg: "not a PDF"},
		{name: "truncated pdf", data: []byte("%PDF-1.4\n1 0 obj\n<<"), wantMsg: "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			if tt.missing {
				path = filepath.Join(t.TempDir(), "absent.pdf")
			} else {
				path = writeFile(t, "doc.pdf", tt.data)
			}
			_, err := Pages(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestPages_ZeroPages(t *testing.T) {
	path := writeFile(t, "empty.pdf", minimalPDF(0))
	_, err := Pages(path)
	if !errors.Is(err, ErrNoPages) {
		t.Errorf("err = %v, want ErrNoPages", err)
	}
}
