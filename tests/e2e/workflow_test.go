package e2e

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

const (
	TEST_PIDFILE_TIMEOUT  = 30 * time.Second
	TEST_SHUTDOWN_TIMEOUT = 10 * time.Second
	TEST_PIDFILE_NAME     = "habitrack-daemon.pid"
)

// findBinary locates the habitrack binary: $HABITRACK_BIN_DIR, or bin/ at
// the repository root
func findBinary(t *testing.T) string {
	t.Helper()
	binDir := os.Getenv("HABITRACK_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join("..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)

	cliPath := filepath.Join(binDir, "habitrack")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("habitrack binary not found at %s; build it with 'go build -o bin/habitrack ./cmd/habitrack'", cliPath)
	}
	t.Logf("Using binary: %s", cliPath)
	return cliPath
}

// isolatedEnv points HOME at tempDir and disables delivery channels that
// reach outside the test
func isolatedEnv(tempDir string) []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "XDG_CONFIG_HOME=") || strings.HasPrefix(e, "HABITRACK_") {
			continue
		}
		env = append(env, e)
	}
	return append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("XDG_CONFIG_HOME=%s", tempDir),
		"HABITRACK_TRAY=false",
		"HABITRACK_TG_TOKEN=",
	)
}

func TestEndToEndWorkflow(t *testing.T) {
	cliPath := findBinary(t)

	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "habitrack", "habitrack.db")
	env := isolatedEnv(tempDir)
	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, env, append([]string{"--config", dbPath}, args...)...)
	}

	// 1. Initialize and configure
	t.Log("Initializing CLI...")
	run("init")
	run("settings", "set", "--timezone", "UTC")

	// 2. Create a daily habit and complete it
	out := run("habit", "add", "Read", "--days", "daily", "--time", "07:30", "-d", "Ten pages")
	assertContains(t, out, "Added habit: Read")

	out = run("mark", "Read")
	assertContains(t, out, `Marked "Read" done`)

	out = run("today")
	assertContains(t, out, "Read")
	assertContains(t, out, "Done: 1/1")

	out = run("milestones")
	assertContains(t, out, "Read:")

	// toggling again removes the completion
	out = run("mark", "Read")
	assertContains(t, out, `Unmarked "Read"`)

	// 3. Rollover and backups
	run("rollover", "--force")
	out = run("backup", "create")
	assertContains(t, out, "Backup created")
	out = run("backup", "list")
	assertContains(t, out, "1 total")

	// 4. Run the daemon and wait for its pidfile
	t.Log("Starting daemon...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	daemonCmd := exec.CommandContext(ctx, cliPath, "--config", dbPath, "daemon")
	daemonCmd.Env = env
	var stderrBuf bytes.Buffer
	daemonCmd.Stderr = &stderrBuf
	if err := daemonCmd.Start(); err != nil {
		t.Fatalf("Failed to start daemon: %v", err)
	}
	defer func() {
		if t.Failed() {
			t.Logf("Daemon stderr: %s", stderrBuf.String())
		}
	}()

	pidfile := filepath.Join(filepath.Dir(dbPath), TEST_PIDFILE_NAME)
	waitForFile(t, pidfile, TEST_PIDFILE_TIMEOUT)
	t.Log("Pidfile found, daemon is running")

	// restore must refuse while the daemon holds the database
	restore := exec.Command(cliPath, "--config", dbPath, "backup", "restore", "--yes")
	restore.Env = env
	if out, err := restore.CombinedOutput(); err == nil {
		t.Errorf("expected restore to fail while the daemon runs, got: %s", out)
	}

	// 5. Graceful shutdown removes the pidfile
	if err := daemonCmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("Failed to signal daemon: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- daemonCmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Daemon exited with error: %v", err)
		}
	case <-time.After(TEST_SHUTDOWN_TIMEOUT):
		t.Fatal("Timed out waiting for daemon to stop")
	}

	if _, err := os.Stat(pidfile); !os.IsNotExist(err) {
		t.Error("Pidfile should be removed after shutdown")
	}

	out = run("backup", "restore", "--yes")
	assertContains(t, out, "restored successfully")
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("expected output to contain %q, got:\n%s", want, out)
	}
}

func waitForFile(t *testing.T, path string, timeout time.Duration) {
	t.Helper()
	start := time.Now()
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if time.Since(start) > timeout {
			t.Fatalf("Timed out waiting for file: %s", path)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
