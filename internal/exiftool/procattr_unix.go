//go:build unix

package exiftool

import (
	"os/exec"
	"syscall"
)

// detachProcessGroup starts cmd in its own process group so signals sent to
// the terminal's foreground group do not reach it.
func detachProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
