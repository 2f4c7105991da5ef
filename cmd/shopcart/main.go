package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const version = "1.0.0"

var (
	h         = flag.Bool("h", false, "help usage")
	showVer   = flag.Bool("v", false, "show version")
	conffile  = flag.String("c", "", "config yaml file")
	initcfg   = flag.Bool("initcfg", false, "print the default config yaml")
	fixedDate = flag.String("date", "", "pin the clock to a date, e.g. 2024-10-15")
	noPromo   = flag.Bool("no-promo", false, "disable timed promotions")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		return
	}
	if *h {
		flag.Usage()
		return
	}
	if *initcfg {
		data, err := yaml.Marshal(config.DefaultAppConfig())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *fixedDate != "" {
		cfg.System.FixedDate = *fixedDate
	}
	if *noPromo {
		cfg.Promotion.Enabled = false
	}

	if err := run(cfg); err != nil {
		zap.L().Error("shopcart exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig) error {
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return errors.Wrap(err, "init application")
	}
	defer application.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := newPrinter(os.Stdout)
	if err := out.attach(application.Session()); err != nil {
		return err
	}
	out.summary(application.Session().Summary())

	application.StartBackgroundJobs(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return out.run(gctx)
	})
	g.Go(func() error {
		return newConsole(application, out).run(gctx, readLines(os.Stdin))
	})
	if addr := cfg.Metrics.Listen; addr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, addr, application.Metrics().Handler())
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server")
	}
	return nil
}
