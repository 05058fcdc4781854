// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !unix && !windows

package backend

import "os/exec"

// procGroup kills only the direct child on platforms without process
// groups or job objects.
type procGroup struct {
	cmd *exec.Cmd
}

func newProcGroup(cmd *exec.Cmd) *procGroup { return &procGroup{cmd: cmd} }

func (g *procGroup) attach() error { return nil }

func (g *procGroup) kill() error {
	if g.cmd.Process == nil {
		return nil
	}
	return g.cmd.Process.Kill()
}

func (g *procGroup) close() {}
