package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database before initialization."`
	Source string `help:"Source database path or connection string to copy habits from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habitrack storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}

	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return errors.New("--force only supports SQLite storage")
	}

	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDbPath, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDbPath
		}
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context) error {
	source, err := cli.NewStore(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	fmt.Println("  Copying settings...")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying habits...")
	habits, err := source.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}

	completions := 0
	for _, habit := range habits {
		n, err := copyHabit(source, ctx.Store, habit)
		if err != nil {
			return fmt.Errorf("habit %s: %w", habit.Name, err)
		}
		completions += n
	}
	fmt.Printf("    Copied %d habits\n", len(habits))
	fmt.Printf("    Copied %d completions\n", completions)

	return nil
}

func copyHabit(src, dst storage.Provider, habit models.Habit) (int, error) {
	reminders, err := src.GetReminders(habit.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to get reminders: %w", err)
	}
	if err := dst.AddHabit(habit, reminders); err != nil {
		return 0, fmt.Errorf("failed to add habit: %w", err)
	}

	m, err := src.GetMilestone(habit.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("failed to get milestone: %w", err)
	}
	if err == nil {
		if err := dst.UpsertMilestone(habit.ID, m.WeekStreak, m.BadgesEarned); err != nil {
			return 0, fmt.Errorf("failed to save milestone: %w", err)
		}
	}

	days, err := src.ListCompletionDates(habit.ID, "")
	if err != nil {
		return 0, fmt.Errorf("failed to get completions: %w", err)
	}
	for _, day := range days {
		c, err := src.GetCompletion(habit.ID, day)
		if err != nil {
			return 0, fmt.Errorf("failed to get completion %s: %w", day, err)
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if err := dst.AddCompletion(c); err != nil {
			return 0, fmt.Errorf("failed to add completion %s: %w", day, err)
		}
	}
	return len(days), nil
}
