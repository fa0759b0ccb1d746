package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitrack/internal/constants"
)

var (
	ErrNotRunning     = errors.New("daemon is not running")
	ErrAlreadyRunning = errors.New("daemon is already running")
)

var findProcessFunc = ps.FindProcess

// PidfilePath returns the daemon pidfile location for a config directory
func PidfilePath(configDir string) string {
	return filepath.Join(configDir, constants.DaemonPidfileName)
}

// WritePidfile records the current process id. It refuses to overwrite the
// pidfile of a daemon that is still alive.
func WritePidfile(path string) error {
	if pid, err := RunningPid(path); err == nil {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create pidfile directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// RemovePidfile deletes the pidfile if it still names this process
func RemovePidfile(path string) error {
	pid, err := readPidfile(path)
	if err != nil {
		return nil
	}
	if pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pidfile: %w", err)
	}
	return nil
}

func readPidfile(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, ErrNotRunning
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, errors.New("invalid process ID in pidfile")
	}
	return pid, nil
}

// RunningPid returns the pid of a live daemon recorded in the pidfile. A
// stale pidfile, or one naming an unrelated process, yields ErrNotRunning.
func RunningPid(path string) (int, error) {
	pid, err := readPidfile(path)
	if err != nil {
		return 0, err
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return 0, ErrNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.DaemonProcessName) {
		return 0, fmt.Errorf("%w: pid %d is %s", ErrNotRunning, pid, process.Executable())
	}
	return pid, nil
}
