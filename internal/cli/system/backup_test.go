package system

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitrack/internal/backup"
	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/storage/postgres"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/tracker"
)

func stubConfirm(t *testing.T, answer bool) *int {
	t.Helper()
	calls := 0
	old := confirm
	t.Cleanup(func() { confirm = old })
	confirm = func(string) (bool, error) {
		calls++
		return answer, nil
	}
	return &calls
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, store, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list with no backups failed: %v", err)
	}
	if err := checkBackups(ctx); err == nil {
		t.Error("expected backup check to warn without backups")
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}

	mgr := backup.NewManager(store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("backup list failed: %v", err)
	}
	if err := checkBackups(ctx); err != nil {
		t.Errorf("expected backup check to pass, got %v", err)
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, _, cleanup := setupTestDB(t)
	defer cleanup()

	tr, err := ctx.Tracker()
	if err != nil {
		t.Fatalf("failed to create tracker: %v", err)
	}
	if _, err := tr.CreateHabit(tracker.HabitInput{Name: "Read", Days: streak.DaySetOf(1, 3)}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}

	habit, err := ctx.Store.GetHabitByName("Read")
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		t.Fatalf("failed to delete habit: %v", err)
	}

	// declining leaves the database alone
	calls := stubConfirm(t, false)
	if err := (&BackupRestoreCmd{}).Run(ctx); err != nil {
		t.Fatalf("cancelled restore failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected one confirmation prompt, got %d", *calls)
	}
	if _, err := ctx.Store.GetHabitByName("Read"); err == nil {
		t.Fatal("cancelled restore should not bring the habit back")
	}

	// restores the newest backup when no file is named
	calls = stubConfirm(t, true)
	if err := (&BackupRestoreCmd{}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	if _, err := ctx.Store.GetHabitByName("Read"); err != nil {
		t.Errorf("expected habit restored, got %v", err)
	}
}

func TestBackupRestore_ByName(t *testing.T) {
	ctx, store, cleanup := setupTestDB(t)
	defer cleanup()

	mgr := backup.NewManager(store.GetConfigPath())
	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	calls := stubConfirm(t, false)
	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(path), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("restore by name failed: %v", err)
	}
	if *calls != 0 {
		t.Error("--yes should skip the confirmation prompt")
	}

	cmd = &BackupRestoreCmd{BackupFile: "habitrack-19990101-000000.db", Yes: true}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected error for a missing backup file")
	}
}

func TestBackupRestore_NoBackups(t *testing.T) {
	ctx, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := (&BackupRestoreCmd{Yes: true}).Run(ctx)
	if !errors.Is(err, backup.ErrNoBackups) {
		t.Errorf("expected ErrNoBackups, got %v", err)
	}
}

func TestBackup_PostgresUnsupported(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://localhost/habitrack")}

	if err := (&BackupCreateCmd{}).Run(ctx); !errors.Is(err, errBackupUnsupported) {
		t.Errorf("expected errBackupUnsupported, got %v", err)
	}
	if err := checkBackups(ctx); err != nil {
		t.Errorf("backup check should pass for postgres, got %v", err)
	}
}
