package models

// Settings represents application-wide settings
type Settings struct {
	Timezone             string `json:"timezone"`              // IANA timezone name, or "Local" for system timezone
	DefaultReminderTime  string `json:"default_reminder_time"` // HH:MM used for reminders without a time
	NotificationsEnabled bool   `json:"notifications_enabled"` // whether reminders are delivered
	RolloverSpec         string `json:"rollover_spec"`         // cron spec for the daily streak check
	LastRollover         string `json:"last_rollover"`         // YYYY-MM-DD of the last completed streak check
}
