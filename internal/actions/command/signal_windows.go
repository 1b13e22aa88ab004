//go:build windows

package command

import "os"

// Windows cannot deliver os.Interrupt to a child, so cancellation kills it.
func interrupt(proc *os.Process) error {
	if proc == nil {
		return os.ErrProcessDone
	}
	return proc.Kill()
}
