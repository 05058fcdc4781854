// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build unix

package backend

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// procGroup starts the child as the leader of a new process group so that
// soffice and the soffice.bin it forks can be killed together.
type procGroup struct {
	cmd *exec.Cmd
}

func newProcGroup(cmd *exec.Cmd) *procGroup {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return &procGroup{cmd: cmd}
}

// attach is a no-op: the group exists from the moment the child starts.
func (g *procGroup) attach() error { return nil }

func (g *procGroup) kill() error {
	if g.cmd.Process == nil {
		return nil
	}
	// A negative pid addresses the whole group.
	err := unix.Kill(-g.cmd.Process.Pid, unix.SIGKILL)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return err
	}
	return nil
}

func (g *procGroup) close() {}
