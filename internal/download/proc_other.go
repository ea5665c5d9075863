//go:build !unix

package download

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
