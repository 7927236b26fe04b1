//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// setDetached puts the command in its own process group so terminal
// signals aimed at linewatch do not reach it
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
