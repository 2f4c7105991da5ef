package app

import (
	"context"

	"github.com/talkincode/shopcart/internal/promotion"
	"go.uber.org/zap"
)

func (a *Application) initJob() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sched = a.newScheduler()
}

func (a *Application) newScheduler() *promotion.Scheduler {
	return promotion.New(a.catalog, a.session.Cart(), promotionConfig(a.appConfig.Promotion),
		promotion.WithClock(a.clock),
		promotion.WithLocker(a.session.Locker()),
		promotion.WithHandler(a.session.OnPromotion),
	)
}

// StartBackgroundJobs arms the promotion timers and stops whichever scheduler
// is current once ctx is done.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.mu.Lock()
	a.jobsCtx = ctx
	sched := a.sched
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		a.Scheduler().Stop()
	}()

	if !a.appConfig.Promotion.Enabled {
		zap.L().Info("promotions disabled")
		return
	}
	if err := sched.Start(); err != nil {
		zap.L().Warn("promotion scheduler not started", zap.Error(err))
	}
}

// restartJob swaps in a scheduler built from the current promotion config and
// starts it when promotions are enabled and background jobs are live.
func (a *Application) restartJob() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sched.Stop()
	a.sched = a.newScheduler()
	if a.jobsCtx == nil || a.jobsCtx.Err() != nil || !a.appConfig.Promotion.Enabled {
		return nil
	}
	return a.sched.Start()
}
