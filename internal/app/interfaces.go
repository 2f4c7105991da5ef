package app

import (
	"context"

	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/promotion"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SessionProvider provides the shopping session
type SessionProvider interface {
	Session() *Session
}

// SchedulerProvider provides the promotion scheduler
type SchedulerProvider interface {
	Scheduler() *promotion.Scheduler
}

// SettingsProvider applies runtime setting changes
type SettingsProvider interface {
	SaveSettings(settings map[string]interface{}) error
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	ConfigProvider
	SessionProvider
	SchedulerProvider
	SettingsProvider

	StartBackgroundJobs(ctx context.Context)
	Release()
}
