package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitrack/internal/constants"
	apperrors "github.com/julianstephens/habitrack/internal/errors"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/tracker"
	"github.com/julianstephens/habitrack/internal/utils"
	"github.com/julianstephens/habitrack/internal/validation"
)

type Context struct {
	Store storage.Provider
	// ConfigDir holds the log directory and the daemon pidfile
	ConfigDir string
	// EnvFile is the optional .env read by the daemon
	EnvFile string
	// Clock replaces time.Now in tests
	Clock func() time.Time
}

// Tracker loads storage and returns a tracker bound to the configured timezone.
func (c *Context) Tracker(opts ...tracker.Option) (*tracker.Tracker, error) {
	if err := c.Store.Load(); err != nil {
		return nil, err
	}

	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone in settings: %w", err)
	}

	base := []tracker.Option{tracker.WithLocation(loc)}
	if c.Clock != nil {
		base = append(base, tracker.WithClock(c.Clock))
	}
	return tracker.New(c.Store, append(base, opts...)...), nil
}

// Now returns the current time, honouring Clock
func (c *Context) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// ParseDays parses a comma-separated list of weekdays, "daily", "weekdays"
// or "weekends"
func ParseDays(s string) (streak.DaySet, error) {
	days, err := validation.Frequency([]string{s})
	return days, apperrors.Usage(err)
}

// FormatDays formats a day set into a human-readable string
func FormatDays(days streak.DaySet) string {
	switch {
	case days.Len() == streak.DaysInWeek:
		return "daily"
	case days.Equal(streak.DaySetOf(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)):
		return "weekdays"
	case days.Equal(streak.DaySetOf(time.Saturday, time.Sunday)):
		return "weekends"
	}
	names := make([]string, 0, days.Len())
	for _, d := range days.Weekdays() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}

// FormatTime shows an empty reminder time as the default it falls back to
func FormatTime(at string) string {
	if at == "" {
		return constants.DefaultReminderTime + " (default)"
	}
	return at
}

// BadgeLabel names a badge tier by the week streak that earns it
func BadgeLabel(tier int) string {
	if tier <= 0 || tier > streak.MaxTier {
		return "none"
	}
	weeks := streak.TierThresholds[tier-1]
	if weeks == 1 {
		return "1 week"
	}
	return fmt.Sprintf("%d weeks", weeks)
}

// ProgressBar renders a percentage as a fixed-width bar
func ProgressBar(pct, width int) string {
	pct = max(0, min(100, pct))
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
