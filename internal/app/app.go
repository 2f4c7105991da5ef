package app

import (
	"context"
	"os"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/catalog"
	"github.com/talkincode/shopcart/internal/promotion"
	"github.com/talkincode/shopcart/pkg/common"
	"github.com/talkincode/shopcart/pkg/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Application struct {
	appConfig *config.AppConfig
	clock     common.Clock
	catalog   *catalog.Catalog
	session   *Session
	metrics   *metrics.ShopMetrics

	mu      sync.Mutex
	sched   *promotion.Scheduler
	jobsCtx context.Context
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ SettingsProvider  = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Session() *Session {
	return a.session
}

// Scheduler returns the promotion scheduler
func (a *Application) Scheduler() *promotion.Scheduler {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched
}

func (a *Application) Metrics() *metrics.ShopMetrics {
	return a.metrics
}

func (a *Application) Clock() common.Clock {
	return a.clock
}

func (a *Application) Init(cfg *config.AppConfig) error {
	a.appConfig = cfg
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	zap.ReplaceGlobals(logger)

	a.clock = newClock(cfg.System)

	prules, err := pricingRules(cfg.Pricing)
	if err != nil {
		return err
	}
	if err := validatePromotion(cfg.Promotion); err != nil {
		return err
	}

	a.catalog, err = catalog.New(a.checkProducts(), catalog.WithThresholds(stockThresholds(cfg.Stock)))
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	zap.S().Infof("Catalog loaded, products: %d, total stock: %d", len(a.catalog.Products()), a.catalog.TotalStock())

	a.metrics = metrics.NewShopMetrics()
	a.session = NewSession(a.catalog,
		WithSessionClock(a.clock),
		WithMetrics(a.metrics),
		WithPricingRules(prules),
		WithLoyaltyRules(loyaltyRules(cfg.Loyalty, prules.SpecialDay)))

	a.initJob()
	return nil
}

// newLogger builds the zap logger, teeing into a rotated JSON file when enabled.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.FileEnable {
		return zapConfig.Build(zap.AddCaller())
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}

// newClock pins the clock to system.fixed_date when set, otherwise uses the
// wall clock.
func newClock(cfg config.SysConfig) common.Clock {
	if cfg.FixedDate == "" {
		return common.SystemClock
	}
	t, err := dateparse.ParseIn(cfg.FixedDate, time.Local)
	if err != nil {
		zap.L().Warn("invalid fixed_date, using system clock", zap.String("fixed_date", cfg.FixedDate), zap.Error(err))
		return common.SystemClock
	}
	zap.L().Info("clock pinned", zap.Time("at", t), zap.String("weekday", t.Weekday().String()))
	return common.FixedClock(t)
}

// Release releases application resources
func (a *Application) Release() {
	if s := a.Scheduler(); s != nil {
		s.Stop()
	}
	_ = zap.L().Sync()
}
