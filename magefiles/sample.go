//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/xuri/excelize/v2"
)

// Sample writes example workbooks to samples/: a two-sheet report and a
// certificate template for the fill command.
func Sample() error {
	mg.Deps(Init)

	if err := writeReport(filepath.Join(samplesDir, "report.xlsx")); err != nil {
		return err
	}
	if err := writeCertificate(filepath.Join(samplesDir, "certificate.xlsx")); err != nil {
		return err
	}
	fmt.Println("Sample workbooks written to", samplesDir)
	return nil
}

func writeReport(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return err
	}
	rows := [][]any{
		{"Region", "Q1", "Q2", "Q3", "Q4"},
		{"North", 120, 135, 150, 170},
		{"South", 90, 95, 110, 105},
		{"East", 60, 80, 75, 95},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Summary", cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellFormula("Summary", "F1", `"Total"`); err != nil {
		return err
	}
	for r := 2; r <= len(rows); r++ {
		if err := f.SetCellFormula("Summary", fmt.Sprintf("F%d", r), fmt.Sprintf("SUM(B%d:E%d)", r, r)); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Notes"); err != nil {
		return err
	}
	if err := f.SetCellValue("Notes", "A1", "Figures are in thousands."); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeCertificate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Certificate"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	labels := map[string]string{
		"B2":  "CERTIFICATE OF CALIBRATION",
		"B10": "Customer",
		"B12": "Instrument",
		"B13": "Serial number",
		"B16": "Date",
	}
	for cell, v := range labels {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B2", "B2", style); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "F", "F", 32); err != nil {
		return err
	}
	return f.SaveAs(path)
}
