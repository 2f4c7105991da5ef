package promotion

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// delayedEvery fires first at `first` and then every `every` after it.
type delayedEvery struct {
	first time.Time
	every time.Duration
}

var _ cron.Schedule = delayedEvery{}

func (s delayedEvery) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	if s.every <= 0 {
		return time.Time{}
	}
	n := t.Sub(s.first)/s.every + 1
	return s.first.Add(n * s.every)
}

// cronLogger routes cron's own logging into zap.
type cronLogger struct{}

var _ cron.Logger = cronLogger{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw(msg, append(keysAndValues, "error", err)...)
}
