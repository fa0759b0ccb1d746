package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName             = "habitrack"
	DefaultKeyringUser  = "database-connection"
	TelegramKeyringUser = "telegram-bot-token"
	DefaultConfigPath   = "~/.config/habitrack/habitrack.db"
	Version             = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "habitrack-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitrack"
	TrayExecutablePrefix   = "habitrack-tray"

	// Daemon constants
	DaemonPidfileName = "habitrack-daemon.pid"
	DaemonProcessName = "habitrack"

	// Session States
	StateToday SessionState = iota
	StateMilestones
	StateAddHabit
	StateEditHabit
	StateConfirmDelete
)
