//go:build !windows

package command

import "os"

func interrupt(proc *os.Process) error {
	if proc == nil {
		return os.ErrProcessDone
	}
	return proc.Signal(os.Interrupt)
}
