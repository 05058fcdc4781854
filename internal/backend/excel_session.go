// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"log/slog"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// ExportAsFixedFormat arguments.
const (
	xlTypePDF         = 0
	xlQualityStandard = 0
)

// comObject is the part of an automation object the Excel export drives.
// On Windows it wraps an IDispatch; tests supply a recording fake.
type comObject interface {
	Call(method string, args ...any) (comObject, error)
	Get(property string, args ...any) (comObject, error)
	Put(property string, args ...any) error
	// Int returns a scalar result, such as a Count.
	Int() int64
	Release()
}

// excelSession runs one export against the application that launch
// returns. Every object it acquires is released on every path.
type excelSession struct {
	launch func() (comObject, error)
	logger *slog.Logger
}

func (s excelSession) export(job Job) error {
	return s.withApplication(func(app comObject) error {
		return s.withWorkbook(app, job.InputPath, func(wb comObject) error {
			target := wb
			if job.Sheets == types.SheetsFirst {
				sheet, err := firstWorksheet(wb)
				if err != nil {
					return err
				}
				defer sheet.Release()
				target = sheet
			}

			if _, err := target.Call("ExportAsFixedFormat",
				xlTypePDF, job.OutputPath, xlQualityStandard, true, false); err != nil {
				return types.NewError(types.ErrProcessNonZeroExit, "excel ExportAsFixedFormat", err)
			}
			return nil
		})
	})
}

// withApplication starts a hidden Excel instance with alerts suppressed,
// runs fn, and always quits Excel and releases the handle afterwards.
func (s excelSession) withApplication(fn func(app comObject) error) error {
	app, err := s.launch()
	if err != nil {
		return types.NewError(types.ErrBackendUnavailable, "launching excel", err)
	}
	defer app.Release()
	defer func() {
		if _, err := app.Call("Quit"); err != nil {
			s.logger.Warn("quitting excel", slog.String("error", err.Error()))
		}
	}()

	if err := app.Put("Visible", false); err != nil {
		return types.NewError(types.ErrProcessNonZeroExit, "hiding excel", err)
	}
	if err := app.Put("DisplayAlerts", false); err != nil {
		return types.NewError(types.ErrProcessNonZeroExit, "suppressing excel alerts", err)
	}

	return fn(app)
}

// withWorkbook opens path, runs fn, and always closes the workbook without
// saving and releases it afterwards.
func (s excelSession) withWorkbook(app comObject, path string, fn func(wb comObject) error) error {
	workbooks, err := app.Get("Workbooks")
	if err != nil {
		return types.NewError(types.ErrProcessNonZeroExit, "excel Workbooks", err)
	}
	defer workbooks.Release()

	wb, err := workbooks.Call("Open", path)
	if err != nil {
		return types.NewError(types.ErrProcessNonZeroExit, "opening workbook in excel", err)
	}
	defer wb.Release()
	defer func() {
		if _, err := wb.Call("Close", false); err != nil {
			s.logger.Warn("closing workbook", slog.String("error", err.Error()))
		}
	}()

	return fn(wb)
}

func firstWorksheet(wb comObject) (comObject, error) {
	sheets, err := wb.Get("Worksheets")
	if err != nil {
		return nil, types.NewError(types.ErrProcessNonZeroExit, "excel Worksheets", err)
	}
	defer sheets.Release()

	count, err := sheets.Get("Count")
	if err != nil {
		return nil, types.NewError(types.ErrProcessNonZeroExit, "counting worksheets", err)
	}
	if count.Int() < 1 {
		return nil, types.NewError(types.ErrProcessNonZeroExit, "workbook has no worksheets", nil)
	}

	item, err := sheets.Get("Item", 1)
	if err != nil {
		return nil, types.NewError(types.ErrProcessNonZeroExit, "excel Worksheets(1)", err)
	}
	return item, nil
}
