//go:build !unix

package process

import "os/exec"

func setDetached(cmd *exec.Cmd) {}
