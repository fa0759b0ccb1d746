package daemon

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitrack/internal/logger"
)

// cronLogger routes cron's own logging into the application log
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// NewCron returns a cron scheduler in loc whose jobs recover from panics and
// never overlap with themselves.
func NewCron(loc *time.Location) *cron.Cron {
	l := cronLogger{}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
}
