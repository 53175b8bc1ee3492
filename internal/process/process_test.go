package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distantorigin/osb-installer/internal/installerr"
)

// TestHelperProcess is not a real test: it is the child started by the
// Launch tests through the test binary itself
func TestHelperProcess(t *testing.T) {
	if os.Getenv("OSB_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	code := 0
	if len(args) == 2 && args[0] == "exit" {
		code, _ = strconv.Atoi(args[1])
	}
	os.Exit(code)
}

func helperArgs(code int) []string {
	return []string{"-test.run=TestHelperProcess", "--", "exit", strconv.Itoa(code)}
}

func TestRunBlocking_ExitCodes(t *testing.T) {
	t.Setenv("OSB_HELPER_PROCESS", "1")
	exe, err := os.Executable()
	require.NoError(t, err)

	code, err := RunBlocking(context.Background(), exe, helperArgs(0))
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = RunBlocking(context.Background(), exe, helperArgs(7))
	require.Error(t, err)
	assert.Equal(t, 7, code)
	assert.True(t, installerr.Is(err, installerr.Process))
	assert.Contains(t, err.Error(), "exit code 7")
}

func TestLaunch_Detached(t *testing.T) {
	t.Setenv("OSB_HELPER_PROCESS", "1")
	exe, err := os.Executable()
	require.NoError(t, err)

	h, err := Launch(context.Background(), exe, helperArgs(3), Detached)
	require.NoError(t, err)
	assert.NotZero(t, h.Pid)
	// detached launches never report the child's exit code
	assert.Equal(t, 0, h.ExitCode)
	// reap the child so the test does not leave a zombie behind
	_ = h.cmd.Wait()
}

func TestLaunch_MissingExecutable(t *testing.T) {
	_, err := Launch(context.Background(), filepath.Join(t.TempDir(), "steamcmd.exe"), nil, Wait)
	assert.True(t, installerr.Is(err, installerr.NotFound), "got %v", err)

	code, err := RunBlocking(context.Background(), filepath.Join(t.TempDir(), "nope.exe"), nil)
	assert.Equal(t, -1, code)
	assert.True(t, installerr.Is(err, installerr.NotFound))
}

func TestIsRunning_CaseInsensitiveExactMatch(t *testing.T) {
	orig := processNames
	t.Cleanup(func() { processNames = orig })
	processNames = func() ([]string, error) {
		return []string{"explorer.exe", "Steam.exe", "steamwebhelper.exe"}, nil
	}

	assert.True(t, IsRunning("steam.exe"))
	assert.True(t, IsRunning("STEAM.EXE"))
	assert.False(t, IsRunning("steam"))
	assert.False(t, IsRunning("webhelper.exe"))
}

func TestIsRunning_ListFailure(t *testing.T) {
	orig := processNames
	t.Cleanup(func() { processNames = orig })
	processNames = func() ([]string, error) { return nil, errors.New("access denied") }

	assert.False(t, IsRunning("steam.exe"))
}

func TestWaitForExit(t *testing.T) {
	orig := processNames
	t.Cleanup(func() { processNames = orig })

	calls := 0
	processNames = func() ([]string, error) {
		calls++
		if calls < 3 {
			return []string{"OpenStarbound-Installer.tmp"}, nil
		}
		return nil, nil
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	p := &Poller{Interval: time.Second, Timeout: 2 * time.Minute, Clock: clock}
	require.NoError(t, WaitForExit(context.Background(), "openstarbound-installer.tmp", p))
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)

	processNames = func() ([]string, error) { return []string{"stuck.exe"}, nil }
	clock = &fakeClock{now: time.Unix(0, 0)}
	p = &Poller{Interval: time.Second, Timeout: 5 * time.Second, Clock: clock}
	err := WaitForExit(context.Background(), "stuck.exe", p)
	assert.True(t, installerr.Is(err, installerr.Timeout))
	assert.Equal(t, 5*time.Second, clock.now.Sub(time.Unix(0, 0)))
}

func TestWaitForExit_Cancelled(t *testing.T) {
	orig := processNames
	t.Cleanup(func() { processNames = orig })
	processNames = func() ([]string, error) { return []string{"stuck.exe"}, nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Poller{Interval: time.Second, Timeout: 2 * time.Minute, Clock: &fakeClock{now: time.Unix(0, 0)}}
	err := WaitForExit(ctx, "stuck.exe", p)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestIsRunning_Integration uses the real process table
func TestIsRunning_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	assert.False(t, IsRunning(fmt.Sprintf("nonexistent-process-%d.exe", os.Getpid())))
}
