//go:build !unix

package exiftool

import "os/exec"

func detachProcessGroup(cmd *exec.Cmd) {}
