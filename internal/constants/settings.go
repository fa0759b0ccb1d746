package constants

const (
	SettingTimezone             = "timezone"
	SettingDefaultReminderTime  = "default_reminder_time"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingRolloverSpec         = "rollover_spec"
	SettingLastRollover         = "last_rollover"

	// Default Settings Values
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultReminderTime         = "09:00"
	DefaultNotificationsEnabled = true
	DefaultRolloverSpec         = "5 0 * * *" // 00:05 every day
)
