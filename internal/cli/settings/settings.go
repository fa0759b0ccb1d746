package settings

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/utils"
	"github.com/julianstephens/habitrack/internal/validation"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Update settings."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	lastRollover := settings.LastRollover
	if lastRollover == "" {
		lastRollover = "never"
	}

	fmt.Println("Current Settings:")
	fmt.Printf("  Timezone:              %s\n", settings.Timezone)
	fmt.Printf("  Default Reminder Time: %s\n", settings.DefaultReminderTime)
	fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
	fmt.Printf("  Rollover Schedule:     %s\n", settings.RolloverSpec)
	fmt.Printf("  Last Rollover:         %s\n", lastRollover)
	return nil
}

type SettingsSetCmd struct {
	Timezone             *string `help:"IANA timezone name, or Local for the system timezone."`
	DefaultReminderTime  *string `help:"Reminder time (HH:MM) for habits without one."`
	NotificationsEnabled *bool   `help:"Enable or disable reminder notifications."`
	RolloverSpec         *string `help:"Cron spec of the daily streak check, e.g. \"5 0 * * *\"."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.DefaultReminderTime != nil {
		at, err := validation.ReminderTime(*c.DefaultReminderTime)
		if err != nil {
			return err
		}
		if at == "" {
			return fmt.Errorf("default reminder time cannot be empty")
		}
		settings.DefaultReminderTime = at
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.RolloverSpec != nil {
		if _, err := cron.ParseStandard(*c.RolloverSpec); err != nil {
			return fmt.Errorf("invalid rollover schedule %q: %w", *c.RolloverSpec, err)
		}
		settings.RolloverSpec = *c.RolloverSpec
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	fmt.Println("Restart the daemon for schedule changes to take effect.")
	return nil
}
