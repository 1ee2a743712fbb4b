package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SMCTrader/internal/service/ratelimit"
	"SMCTrader/internal/usecase"
	"SMCTrader/pkg/cache"
	pkgch "SMCTrader/pkg/clickhouse"
	"SMCTrader/pkg/config"
	xhttp "SMCTrader/pkg/http"
	pkgkafka "SMCTrader/pkg/kafka"
	applogger "SMCTrader/pkg/logger"
)

// Deps are the components the app starts and stops. Optional ones are nil
// when disabled in config.
type Deps struct {
	Config      *config.Config
	Logger      *applogger.Logger
	Handler     xhttp.Handler
	Collector   *usecase.CandleCollector
	Processor   *usecase.CandleProcessor
	Consumer    *pkgkafka.Consumer
	KafkaCandle pkgkafka.MessageHandler
	Producer    *pkgkafka.Producer
	ClickHouse  *pkgch.Client
	Cache       cache.Service
	Limiter     *ratelimit.Limiter
}

// App owns the process lifecycle: feed, consumer, HTTP API and shutdown.
type App struct {
	d          Deps
	l          *applogger.Logger
	httpServer *xhttp.Server
	cancel     context.CancelFunc
	pruneDone  chan struct{}
}

func New(d Deps) *App {
	l := d.Logger
	if l == nil {
		l = applogger.NewNop()
	}
	cfg := d.Config
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return &App{
		d: d,
		l: l,
		httpServer: xhttp.NewServer(d.Handler,
			xhttp.WithPort(cfg.Server.Port),
			xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
			xhttp.WithSlowRequest(cfg.Server.SlowRequest),
			xhttp.WithMetricsPath(metricsPath),
			xhttp.WithLogger(l),
		),
	}
}

// Run starts everything and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		a.Shutdown()
		return err
	}
	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.Shutdown()
}

// Start launches the optional feed and consumer, then the HTTP server.
func (a *App) Start(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel
	cfg := a.d.Config

	if a.d.Collector != nil {
		if err := a.d.Collector.Start(ctx); err != nil {
			// the feed client keeps reconnecting; the API still serves stored data
			a.l.Error("candle feed start failed", applogger.Error(err))
		} else {
			a.l.Info("candle feed started",
				applogger.Strings("symbols", cfg.Feed.Symbols),
				applogger.Strings("timeframes", cfg.Feed.Timeframes),
				applogger.String("backend", cfg.Backend.Type),
			)
		}
	}

	if a.d.Consumer != nil && a.d.KafkaCandle != nil {
		a.d.Consumer.RegisterHandler(a.d.KafkaCandle)
		if err := a.d.Consumer.Start(); err != nil {
			return err
		}
		a.l.Info("candles consumer started", applogger.String("topic", a.d.KafkaCandle.Topic()))
	}

	if a.d.Limiter != nil {
		a.pruneDone = make(chan struct{})
		go a.pruneLimiter(ctx, time.Minute)
	}

	return a.httpServer.Start()
}

func (a *App) pruneLimiter(ctx context.Context, every time.Duration) {
	defer close(a.pruneDone)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.d.Limiter.Prune(10 * every); n > 0 {
				a.l.Debug("rate limiter pruned", applogger.Int("keys", n))
			}
		}
	}
}

// Shutdown stops producers of work first, then sinks, then clients.
func (a *App) Shutdown() error {
	a.l.Info("shutting down")
	if a.cancel != nil {
		a.cancel()
	}
	if a.pruneDone != nil {
		<-a.pruneDone
	}

	timeout := a.httpServer.ShutdownTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if a.d.Collector != nil {
		if err := a.d.Collector.Shutdown(ctx); err != nil {
			a.l.Warn("candle feed stop failed", applogger.Error(err))
		}
	}
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown failed", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.d.Consumer != nil {
		if err := a.d.Consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop failed", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	// flush collected errors while the producer is still open
	a.l.RemoveCollector()

	if a.d.Processor != nil {
		a.d.Processor.Close()
	}
	if a.d.Producer != nil {
		if err := a.d.Producer.Close(); err != nil {
			a.l.Warn("kafka producer close failed", applogger.Error(err))
		}
	}
	if a.d.ClickHouse != nil {
		if err := a.d.ClickHouse.Close(); err != nil {
			a.l.Warn("clickhouse close failed", applogger.Error(err))
		}
	}
	if closer, ok := a.d.Cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.l.Warn("cache close failed", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

// HTTP exposes the server for tests.
func (a *App) HTTP() *xhttp.Server { return a.httpServer }
