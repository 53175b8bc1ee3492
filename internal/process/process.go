package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"

	"github.com/distantorigin/osb-installer/internal/installerr"
)

// Mode selects whether Launch waits for the child to exit
type Mode int

const (
	// Detached starts the process and returns immediately
	Detached Mode = iota
	// Wait blocks until the process exits and checks its exit code
	Wait
)

// Handle is a started process
type Handle struct {
	Pid      int
	ExitCode int
	cmd      *exec.Cmd
}

// Release detaches from a process started in Detached mode
func (h *Handle) Release() error {
	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Release()
}

// processNames lists the image names of running processes
var processNames = func() ([]string, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// IsRunning reports whether a process with the given image name is running
func IsRunning(imageName string) bool {
	names, err := processNames()
	if err != nil {
		log.Debugf("failed to list processes: %v", err)
		return false
	}
	for _, name := range names {
		if strings.EqualFold(name, imageName) {
			return true
		}
	}
	return false
}

// WaitForExit polls on p until no process with imageName is running. It
// returns the poller's timeout error, or a cancellation error once ctx is done.
func WaitForExit(ctx context.Context, imageName string, p *Poller) error {
	return p.WaitUntil(ctx, func() bool { return !IsRunning(imageName) })
}

// Launch starts exePath. In Wait mode it blocks until exit and any non-zero
// exit code is a process error; in Detached mode it returns once started.
func Launch(ctx context.Context, exePath string, args []string, mode Mode) (*Handle, error) {
	op := filepath.Base(exePath)

	if _, err := os.Stat(exePath); err != nil {
		return nil, installerr.New(installerr.NotFound, op, err)
	}

	var cmd *exec.Cmd
	if mode == Wait {
		cmd = exec.CommandContext(ctx, exePath, args...)
	} else {
		// detached children outlive the run
		cmd = exec.Command(exePath, args...)
	}
	cmd.Dir = filepath.Dir(exePath)

	if err := cmd.Start(); err != nil {
		return nil, installerr.New(installerr.Process, op, err)
	}
	h := &Handle{Pid: cmd.Process.Pid, cmd: cmd}
	log.Debugf("started %s (pid %d) %v", exePath, h.Pid, args)

	if mode == Detached {
		return h, nil
	}

	err := cmd.Wait()
	h.ExitCode = cmd.ProcessState.ExitCode()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return h, installerr.Errorf(installerr.Process, op, "exit code %d", h.ExitCode)
		}
		return h, installerr.New(installerr.Process, op, err)
	}
	return h, nil
}

// RunBlocking runs exePath to completion and returns its exit code
func RunBlocking(ctx context.Context, exePath string, args []string) (int, error) {
	h, err := Launch(ctx, exePath, args, Wait)
	if h == nil {
		return -1, err
	}
	return h.ExitCode, err
}
