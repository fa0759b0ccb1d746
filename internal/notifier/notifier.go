package notifier

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitrack/internal/logger"
)

// ErrNotConfigured is returned by constructors whose backend has no credentials.
var ErrNotConfigured = errors.New("notifier not configured")

// Notifier delivers a reminder to the user.
type Notifier interface {
	Notify(title, body string) error
}

// Multi delivers to every notifier in order. It fails only when none of them
// delivered the message.
type Multi []Notifier

func (m Multi) Notify(title, body string) error {
	if len(m) == 0 {
		return ErrNotConfigured
	}

	var errs []error
	delivered := 0
	for _, n := range m {
		if err := n.Notify(title, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", Name(n), err))
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		logger.Debug("Notifier failed", "error", err)
	}
	return nil
}

// Name returns a short label for a notifier, used in logs and doctor output.
func Name(n Notifier) string {
	switch n.(type) {
	case *Tray:
		return "tray"
	case *Telegram:
		return "telegram"
	case Log, *Log:
		return "log"
	case Multi:
		return "multi"
	default:
		return fmt.Sprintf("%T", n)
	}
}

func formatText(title, body string) string {
	if body == "" {
		return title
	}
	return title + "\n" + body
}
