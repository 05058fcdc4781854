// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workbook reads and rewrites OOXML spreadsheets ahead of conversion.
// It trims workbooks to their first sheet for backends that cannot select a
// sheet themselves, and fills template cells before export.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ooxmlExts lists the extensions excelize can open.
var ooxmlExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// Supports reports whether path names a workbook this package can edit.
func Supports(path string) bool {
	return ooxmlExts[strings.ToLower(filepath.Ext(path))]
}

// FirstSheetCopy writes a copy of src to dst that keeps only the first
// sheet, and returns that sheet's name. Parent directories of dst are
// created. src is never modified.
func FirstSheetCopy(src, dst string) (string, error) {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return "", fmt.Errorf("opening workbook %s: %w", src, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", src)
	}

	for _, name := range sheets[1:] {
		if err := f.DeleteSheet(name); err != nil {
			return "", fmt.Errorf("removing sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := save(f, dst); err != nil {
		return "", err
	}
	return sheets[0], nil
}

// Fill copies the template workbook to dst with the given cells set.
// Keys are either a bare cell reference ("F12"), which targets the first
// sheet, or a sheet-qualified one ("Summary!B2").
func Fill(template, dst string, cells map[string]string) error {
	f, err := excelize.OpenFile(template)
	if err != nil {
		return fmt.Errorf("opening template %s: %w", template, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("template %s has no sheets", template)
	}

	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, ref := range keys {
		sheet, cell := splitRef(ref, sheets[0])
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return fmt.Errorf("cell %s: no sheet named %q", ref, sheet)
		}
		if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
			return fmt.Errorf("cell %s: %w", ref, err)
		}
		if err := f.SetCellValue(sheet, cell, cells[ref]); err != nil {
			return fmt.Errorf("setting %s: %w", ref, err)
		}
	}

	return save(f, dst)
}

// splitRef separates "Sheet!A1" into its parts. A bare reference resolves
// to defaultSheet.
func splitRef(ref, defaultSheet string) (sheet, cell string) {
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		return strings.Trim(ref[:i], "'"), strings.ToUpper(ref[i+1:])
	}
	return defaultSheet, strings.ToUpper(ref)
}

func save(f *excelize.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	if err := f.SaveAs(dst); err != nil {
		return fmt.Errorf("saving workbook %s: %w", dst, err)
	}
	return nil
}
