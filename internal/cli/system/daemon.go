package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/config"
	"github.com/julianstephens/habitrack/internal/daemon"
	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/reminder"
	"github.com/julianstephens/habitrack/internal/tracker"
	"github.com/julianstephens/habitrack/internal/utils"
)

// DaemonCmd runs the daily streak check and delivers reminders until
// interrupted
type DaemonCmd struct{}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.EnvFile)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{
		ConfigDir: ctx.ConfigDir,
		Level:     cfg.LogLevel,
		Stderr:    true,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := ctx.Store.Load(); err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// cron fires in the same timezone the tracker decides "today" in
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone in settings: %w", err)
	}
	cr := daemon.NewCron(loc)

	sched := reminder.New(cr, ctx.Store, buildNotifier(cfg))
	t, err := ctx.Tracker(tracker.WithLocation(loc), tracker.WithObserver(sched))
	if err != nil {
		return err
	}

	opts := daemon.Options{
		RolloverSpec: settings.RolloverSpec,
		Refresh:      cfg.ReminderRefresh,
		Pidfile:      daemon.PidfilePath(ctx.ConfigDir),
	}
	if mgr, err := backupManager(ctx); err == nil {
		opts.Backup = mgr
	}
	d := daemon.New(cr, t, sched, opts)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Daemon starting", "store", ctx.Store.GetConfigPath(), "telegram", cfg.TelegramEnabled())
	return d.Run(runCtx)
}
