package sqlbase

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/storage"
)

// DefaultSettings returns the settings written by Init on a fresh database
func DefaultSettings() models.Settings {
	return models.Settings{
		Timezone:             constants.DefaultTimezone,
		DefaultReminderTime:  constants.DefaultReminderTime,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		RolloverSpec:         constants.DefaultRolloverSpec,
	}
}

func (s *Store) GetSettings() (models.Settings, error) {
	rows, err := s.query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	settings := DefaultSettings()
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDefaultReminderTime:
			settings.DefaultReminderTime = value
		case constants.SettingNotificationsEnabled:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.NotificationsEnabled = b
		case constants.SettingRolloverSpec:
			settings.RolloverSpec = value
		case constants.SettingLastRollover:
			settings.LastRollover = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if count == 0 {
		return models.Settings{}, fmt.Errorf("settings: %w", storage.ErrNotFound)
	}
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	values := map[string]string{
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingDefaultReminderTime:  settings.DefaultReminderTime,
		constants.SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingRolloverSpec:         settings.RolloverSpec,
		constants.SettingLastRollover:         settings.LastRollover,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(s.q(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range values {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}
