//go:build unix

package download

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcessGroup starts the downloader in its own process group so a
// cancel kills any children it forked as well.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
		return err
	}
}
