package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	err := Init(Config{ConfigDir: configDir})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitWritesToLogFile(t *testing.T) {
	configDir := t.TempDir()

	if err := Init(Config{ConfigDir: configDir, Level: "info"}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	Info("habit marked", "habit", "Read")

	data, err := os.ReadFile(LogPath(configDir))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "habit marked") {
		t.Errorf("log file does not contain message, got %q", string(data))
	}
}

func TestInitInvalidLevel(t *testing.T) {
	err := Init(Config{ConfigDir: t.TempDir(), Level: "chatty"})
	if err == nil {
		t.Error("Init should reject an unknown level")
	}
}

func TestInitDebugMode(t *testing.T) {
	err := Init(Config{Debug: true, ConfigDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Error("Logger is nil after initialization")
	}
	Debug("Test debug message in debug mode")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// none of these may panic
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
	With("component", "test").Info("discarded")
}
