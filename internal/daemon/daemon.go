// Package daemon hosts the long-running scheduler: the daily rollover check
// and the weekly reminder jobs.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/tracker"
)

// Rollover runs the daily streak check. *tracker.Tracker satisfies it.
type Rollover interface {
	RunRollover(force bool) (tracker.RolloverReport, error)
}

// Reminders rebuilds reminder jobs. *reminder.Scheduler satisfies it.
type Reminders interface {
	RegenerateAll() error
}

// Backup snapshots the database. *backup.Manager satisfies it.
type Backup interface {
	Create() (string, error)
}

type Options struct {
	// RolloverSpec is the cron spec of the daily check, "5 0 * * *" when empty
	RolloverSpec string
	// Refresh rebuilds reminders on this interval; zero disables it
	Refresh time.Duration
	// Pidfile is written on Start and removed on Stop when set
	Pidfile string
	// Backup, when set, is taken before each scheduled rollover
	Backup Backup
}

type Daemon struct {
	cron      *cron.Cron
	rollover  Rollover
	reminders Reminders
	opts      Options

	rolloverEntry cron.EntryID
}

func New(c *cron.Cron, rollover Rollover, reminders Reminders, opts Options) *Daemon {
	if opts.RolloverSpec == "" {
		opts.RolloverSpec = constants.DefaultRolloverSpec
	}
	return &Daemon{
		cron:      c,
		rollover:  rollover,
		reminders: reminders,
		opts:      opts,
	}
}

// Start catches up on a missed rollover, schedules the jobs and starts cron.
func (d *Daemon) Start() error {
	if d.opts.Pidfile != "" {
		if err := WritePidfile(d.opts.Pidfile); err != nil {
			return err
		}
	}

	// Catch up when the machine was off at the scheduled time. RunRollover
	// is a no-op when today's check already ran.
	d.runRollover()

	if err := d.reminders.RegenerateAll(); err != nil {
		logger.Warn("Some reminders could not be scheduled", "error", err)
	}

	id, err := d.cron.AddFunc(d.opts.RolloverSpec, d.scheduledRollover)
	if err != nil {
		d.cleanup()
		return fmt.Errorf("invalid rollover schedule %q: %w", d.opts.RolloverSpec, err)
	}
	d.rolloverEntry = id

	if d.opts.Refresh > 0 {
		d.cron.Schedule(cron.Every(d.opts.Refresh), cron.FuncJob(d.refreshReminders))
	}

	d.cron.Start()
	logger.Info("Daemon started",
		"rollover", d.opts.RolloverSpec,
		"next_rollover", d.NextRollover().Format(time.RFC3339),
		"refresh", d.opts.Refresh)
	return nil
}

// Stop waits for running jobs to finish, then removes the pidfile
func (d *Daemon) Stop() {
	<-d.cron.Stop().Done()
	d.cleanup()
	logger.Info("Daemon stopped")
}

// Run starts the daemon and blocks until ctx is cancelled
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// NextRollover reports when the next scheduled rollover runs
func (d *Daemon) NextRollover() time.Time {
	return d.cron.Entry(d.rolloverEntry).Next
}

func (d *Daemon) cleanup() {
	if d.opts.Pidfile == "" {
		return
	}
	if err := RemovePidfile(d.opts.Pidfile); err != nil {
		logger.Warn("Failed to remove pidfile", "error", err)
	}
}

func (d *Daemon) scheduledRollover() {
	if d.opts.Backup != nil {
		if _, err := d.opts.Backup.Create(); err != nil {
			logger.Warn("Pre-rollover backup failed", "error", err)
		}
	}
	d.runRollover()
}

func (d *Daemon) runRollover() {
	report, err := d.rollover.RunRollover(false)
	if err != nil {
		logger.Error("Rollover failed", "error", err)
		return
	}
	if report.Skipped {
		logger.Debug("Rollover already ran today", "day", report.Day)
		return
	}
	logger.Info("Rollover complete", "day", report.Day, "checked", report.Checked, "reset", len(report.Reset))
}

func (d *Daemon) refreshReminders() {
	if err := d.reminders.RegenerateAll(); err != nil {
		logger.Warn("Reminder refresh failed", "error", err)
	}
}
