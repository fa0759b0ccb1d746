package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/storage/sqlite"
)

// Wednesday 2026-10-21, noon UTC
var testNow = time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, *sqlite.Store, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	ctx := &cli.Context{
		Store:     store,
		ConfigDir: tempDir,
		Clock:     func() time.Time { return testNow },
	}

	cleanup := func() {
		store.Close()
	}

	return ctx, store, cleanup
}
