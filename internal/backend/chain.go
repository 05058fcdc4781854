// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// Chain tries backends in order. Unavailable backends are skipped; a
// failed export falls through to the next backend while the context is
// still live.
type Chain struct {
	backends []Backend
	logger   *slog.Logger
}

// NewChain returns a Chain over backends in preference order.
func NewChain(logger *slog.Logger, backends ...Backend) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{backends: backends, logger: logger}
}

// Name lists the chained backends, e.g. "auto(excel,libreoffice)".
func (c *Chain) Name() string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return "auto(" + strings.Join(names, ",") + ")"
}

// Check returns nil when at least one chained backend can run, otherwise
// BackendUnavailable carrying every backend's reason.
func (c *Chain) Check() error {
	var reasons []error
	for _, b := range c.backends {
		err := b.Check()
		if err == nil {
			return nil
		}
		reasons = append(reasons, err)
	}
	return types.NewError(types.ErrBackendUnavailable, "no conversion backend available", errors.Join(reasons...))
}

func (c *Chain) Export(ctx context.Context, job Job) error {
	var last error
	var reasons []error
	for _, b := range c.backends {
		if err := b.Check(); err != nil {
			c.logger.Debug("backend unavailable, skipping", slog.String("backend", b.Name()), slog.String("reason", err.Error()))
			reasons = append(reasons, err)
			continue
		}

		err := b.Export(ctx, job)
		if err == nil {
			c.logger.Debug("export succeeded", slog.String("backend", b.Name()))
			return nil
		}
		last = err

		if rmErr := os.Remove(job.OutputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			c.logger.Warn("could not remove partial output", slog.String("path", job.OutputPath), slog.String("error", rmErr.Error()))
		}
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("backend failed, trying next",
			slog.String("backend", b.Name()),
			slog.String("error", err.Error()))
	}

	if last == nil {
		return types.NewError(types.ErrBackendUnavailable, "no conversion backend available", errors.Join(reasons...))
	}
	return last
}
