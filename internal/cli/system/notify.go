package system

import (
	"fmt"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/config"
	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/notifier"
)

// newTelegram is replaced in tests
var newTelegram = func(token string, chatID int64) (notifier.Notifier, error) {
	return notifier.NewTelegram(token, chatID)
}

// buildNotifier assembles the delivery chain: the tray app when enabled,
// Telegram when configured, and the log as a last resort.
func buildNotifier(cfg config.Config) notifier.Multi {
	var chain notifier.Multi
	if cfg.TrayEnabled {
		chain = append(chain, notifier.NewTray())
	}
	if cfg.TelegramEnabled() {
		tg, err := newTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("Telegram notifications disabled", "error", err)
		} else {
			chain = append(chain, tg)
		}
	}
	return append(chain, notifier.Log{})
}

// NotifyCmd sends a one-off reminder through the configured notifiers
type NotifyCmd struct {
	Title  string `arg:"" default:"habitrack" help:"Notification title."`
	Body   string `help:"Notification body."`
	DryRun bool   `help:"Print the notifiers that would be used instead of sending."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.EnvFile)
	if err != nil {
		return err
	}

	chain := buildNotifier(cfg)
	if c.DryRun {
		for _, n := range chain {
			fmt.Printf("[DryRun] %s: %s\n", notifier.Name(n), c.Title)
		}
		return nil
	}

	if err := chain.Notify(c.Title, c.Body); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	fmt.Println("✓ Notification sent")
	return nil
}
