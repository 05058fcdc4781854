// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process
// group has been killed.
const waitDelay = 5 * time.Second

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	IsExecutable(path string) bool
	// Run executes name with args, bounded by ctx, and returns combined
	// stdout and stderr. A non-zero exit is reported as *ExitError; an
	// expired context as ctx.Err().
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExitError reports a command that started and exited non-zero.
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	group := newProcGroup(cmd)
	cmd.Cancel = group.kill
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer group.close()
	// Without the group a timeout still kills the direct child.
	_ = group.attach()

	err := cmd.Wait()
	if err != nil && ctx.Err() != nil {
		return out.Bytes(), ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), &ExitError{Code: exitErr.ExitCode(), Output: out.String()}
	}
	return out.Bytes(), err
}
