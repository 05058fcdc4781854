// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package backend

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// Excel is unavailable outside Windows; it exists so that --backend excel
// fails with BackendUnavailable instead of a build error.
type Excel struct{}

func NewExcel(logger *slog.Logger) *Excel { return &Excel{} }

func (e *Excel) Name() string { return nameExcel }

func (e *Excel) Check() error {
	return types.NewError(types.ErrBackendUnavailable, "excel automation",
		fmt.Errorf("COM automation is not supported on %s", runtime.GOOS))
}

func (e *Excel) Export(ctx context.Context, job Job) error {
	return e.Check()
}
