// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfcheck confirms that a backend produced a usable PDF.
package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// ErrNoPages is returned for a PDF whose page tree is empty.
var ErrNoPages = errors.New("pdf has no pages")

// Pages opens the file at path as a PDF and returns its page count.
func Pages(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%s is empty", path)
	}

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return 0, fmt.Errorf("%s is not a PDF (missing %%PDF- header)", path)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	n = r.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%s: %w", path, ErrNoPages)
	}
	return n, nil
}
