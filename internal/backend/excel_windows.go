// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

const (
	excelProgID = "Excel.Application"

	// sFalse is returned by CoInitializeEx when COM is already initialized
	// on the thread.
	sFalse = 0x1
)

// Excel exports workbooks through the Excel COM automation interface.
type Excel struct {
	logger *slog.Logger
}

func NewExcel(logger *slog.Logger) *Excel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Excel{logger: logger.With(slog.String("backend", nameExcel))}
}

func (e *Excel) Name() string { return nameExcel }

// Check reports whether Excel is registered as a COM server. It does not
// start Excel.
func (e *Excel) Check() error {
	err := withCOM(func() error {
		_, err := ole.ClassIDFrom(excelProgID)
		return err
	})
	if err != nil {
		return types.NewError(types.ErrBackendUnavailable, "excel is not registered for automation", err)
	}
	return nil
}

// Export drives Excel on a dedicated OS thread. COM calls cannot be
// interrupted, so on timeout the session is abandoned; it still closes the
// workbook and quits Excel once the pending call returns.
func (e *Excel) Export(ctx context.Context, job Job) error {
	session := excelSession{launch: launchExcel, logger: e.logger}
	done := make(chan error, 1)
	go func() {
		done <- withCOM(func() error { return session.export(job) })
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		e.logger.Warn("abandoning excel session", slog.String("input", job.InputPath))
		return types.NewError(types.ErrProcessTimeout, "excel did not finish in time", ctx.Err())
	}
}

func launchExcel() (comObject, error) {
	unknown, err := oleutil.CreateObject(excelProgID)
	if err != nil {
		return nil, err
	}
	defer unknown.Release()

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("acquiring excel dispatch: %w", err)
	}
	return &oleObject{disp: app}, nil
}

// oleObject adapts an IDispatch, or the scalar result of a call, to
// comObject.
type oleObject struct {
	disp *ole.IDispatch
	val  int64
}

func wrapVariant(v *ole.VARIANT) *oleObject {
	o := &oleObject{val: v.Val}
	if v.VT == ole.VT_DISPATCH {
		o.disp = v.ToIDispatch()
	}
	return o
}

func (o *oleObject) Call(method string, args ...any) (comObject, error) {
	v, err := oleutil.CallMethod(o.disp, method, args...)
	if err != nil {
		return nil, err
	}
	return wrapVariant(v), nil
}

func (o *oleObject) Get(property string, args ...any) (comObject, error) {
	v, err := oleutil.GetProperty(o.disp, property, args...)
	if err != nil {
		return nil, err
	}
	return wrapVariant(v), nil
}

func (o *oleObject) Put(property string, args ...any) error {
	_, err := oleutil.PutProperty(o.disp, property, args...)
	return err
}

func (o *oleObject) Int() int64 { return o.val }

func (o *oleObject) Release() {
	if o.disp != nil {
		o.disp.Release()
	}
}

// withCOM runs fn on a locked OS thread with COM initialized for a
// single-threaded apartment.
func withCOM(fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return fmt.Errorf("initializing COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	return fn()
}
