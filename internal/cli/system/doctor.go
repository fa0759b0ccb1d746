package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitrack/internal/backup"
	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/daemon"
	"github.com/julianstephens/habitrack/internal/keyring"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/notifier"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/storage/sqlite"
	"github.com/julianstephens/habitrack/internal/utils"
	"github.com/julianstephens/habitrack/internal/validation"
)

type DoctorCmd struct{}

// check is one diagnostic. Warnings are reported but never fail the run.
type check struct {
	name    string
	needsDB bool
	warning bool
	run     func(ctx *cli.Context) error
}

var doctorChecks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Clock/timezone", needsDB: true, run: checkClockTimezone},
	{name: "Rollover", needsDB: true, warning: true, run: checkRollover},
	{name: "Backups present", needsDB: true, warning: true, run: checkBackups},
	{name: "Daemon running", warning: true, run: checkDaemon},
	{name: "OS keyring", warning: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	for _, c := range doctorChecks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warning:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	if notifier.NewTray().Available() {
		fmt.Printf("ℹ Tray app: running\n")
	} else {
		fmt.Printf("ℹ Tray app: not running\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return errors.New("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	st, err := runner.Status()
	if err != nil {
		return err
	}
	if !st.UpToDate() {
		return fmt.Errorf("schema version %d, latest %d (%d pending); run 'habitrack migrate'",
			st.Current, st.Latest, len(st.Pending))
	}
	return nil
}

// snapshot gathers everything the validator inspects
func snapshot(ctx *cli.Context, today string) (validation.Snapshot, error) {
	s := validation.Snapshot{
		Milestones:  map[string]models.Milestone{},
		LastDayDone: map[string]string{},
		Today:       today,
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return s, fmt.Errorf("failed to get habits: %w", err)
	}
	s.Habits = habits

	if s.Reminders, err = ctx.Store.GetAllReminders(); err != nil {
		return s, fmt.Errorf("failed to get reminders: %w", err)
	}

	milestones, err := ctx.Store.GetAllMilestones()
	if err != nil {
		return s, fmt.Errorf("failed to get milestones: %w", err)
	}
	for _, m := range milestones {
		s.Milestones[m.HabitID] = m.Milestone
	}

	for _, h := range habits {
		last, err := ctx.Store.LastCompletionDate(h.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return s, fmt.Errorf("failed to get completions for %s: %w", h.Name, err)
		}
		s.LastDayDone[h.ID] = last
	}
	return s, nil
}

func checkValidation(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.Local
	}

	s, err := snapshot(ctx, utils.FormatDate(ctx.Now().In(loc)))
	if err != nil {
		return err
	}

	result := validation.New().ValidateHabits(s)
	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s):\n%s", len(result.Conflicts), result.FormatReport())
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone %q in settings", settings.Timezone)
	}

	now := ctx.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system clock appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// checkRollover warns when the daily check has not run for over a day
func checkRollover(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.LastRollover == "" {
		return errors.New("streak check has never run; start 'habitrack daemon' or run 'habitrack rollover'")
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return err
	}
	last, err := utils.ParseDateInLocation(settings.LastRollover, loc)
	if err != nil {
		return fmt.Errorf("invalid last rollover date %q", settings.LastRollover)
	}
	now := ctx.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if today.Sub(last) > 24*time.Hour {
		return fmt.Errorf("last streak check ran on %s", settings.LastRollover)
	}
	return nil
}

// checkBackups passes for storage without file snapshots
func checkBackups(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if errors.Is(err, errBackupUnsupported) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := mgr.Latest(); err != nil {
		if errors.Is(err, backup.ErrNoBackups) {
			return errors.New("no backups found; create one with 'habitrack backup create'")
		}
		return err
	}
	return nil
}

func checkDaemon(ctx *cli.Context) error {
	if ctx.ConfigDir == "" {
		return errors.New("config directory unknown")
	}
	if _, err := daemon.RunningPid(daemon.PidfilePath(ctx.ConfigDir)); err != nil {
		return fmt.Errorf("reminders and the daily streak check need 'habitrack daemon': %w", err)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}
