package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/cli/habits"
	"github.com/julianstephens/habitrack/internal/cli/settings"
	"github.com/julianstephens/habitrack/internal/cli/system"
	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/errors"
	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite file path, PostgreSQL connection string, or 'keyring' to read the connection string from the OS keyring. PostgreSQL credentials must NOT be embedded in the connection string." type:"string" default:"${default_config}"`
	Debug   bool   `help:"Log debug output to stderr."`
	EnvFile string `help:"Env file read by the daemon and notify commands." type:"string" default:".env"`

	Init       system.InitCmd       `cmd:"" help:"Initialize habitrack storage."`
	Migrate    system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor     system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui        system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Daemon     system.DaemonCmd     `cmd:"" help:"Run the daily streak check and deliver reminders."`
	Habit      habits.HabitCmd      `cmd:"" help:"Manage habits."`
	Mark       habits.MarkCmd       `cmd:"" help:"Toggle a habit's completion for a day."`
	Today      habits.TodayCmd      `cmd:"" help:"Show habits scheduled for today."`
	Milestones habits.MilestonesCmd `cmd:"" help:"Show week streaks and badge progress."`
	Rollover   habits.RolloverCmd   `cmd:"" help:"Run the daily streak check now."`
	Settings   settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup     system.BackupCmd     `cmd:"" help:"Create, list and restore database backups."`
	Keyring    system.KeyringCmd    `cmd:"" help:"Manage secrets stored in the OS keyring."`
	Notify     system.NotifyCmd     `cmd:"" hidden:"" help:"Send a test notification."`
}

// configDir holds logs and the daemon pidfile: the SQLite file's directory,
// or the default config directory for PostgreSQL.
func configDir(config string) string {
	if config == cli.KeyringConfig || storage.IsPostgresConnString(config) {
		config = constants.DefaultConfigPath
	}
	path, err := utils.ExpandPath(config)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly habit tracker with streaks, badges and reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	dir := configDir(CLI.Config)
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: dir}); err != nil {
		errors.Fatal(fmt.Errorf("failed to initialize logger: %w", err))
	}

	appCtx := &cli.Context{
		ConfigDir: dir,
		EnvFile:   CLI.EnvFile,
	}

	command := ctx.Command()
	if !skipsStorage(command) {
		store, err := cli.NewStore(CLI.Config)
		if err != nil {
			errors.Fatal(err)
		}
		defer store.Close()
		appCtx.Store = store

		if loadsStorage(command) {
			if err := store.Load(); err != nil {
				errors.Fatal(err)
			}
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		if appCtx.Store != nil {
			appCtx.Store.Close()
		}
		errors.Fatal(err)
	}
}

// skipsStorage reports commands that never open the database
func skipsStorage(command string) bool {
	return strings.HasPrefix(command, "keyring") || strings.HasPrefix(command, "notify")
}

// loadsStorage reports commands that need an initialized database up front.
// init creates it, doctor reports a missing one itself and a restore may
// replace a database that no longer opens.
func loadsStorage(command string) bool {
	return command != "init" && command != "doctor" && !strings.HasPrefix(command, "backup restore")
}
