package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/loadstone/internal/batch"
	"github.com/smallbiznis/loadstone/internal/clock"
	"github.com/smallbiznis/loadstone/internal/config"
	"github.com/smallbiznis/loadstone/internal/extract"
	"github.com/smallbiznis/loadstone/internal/history"
	"github.com/smallbiznis/loadstone/internal/logger"
	"github.com/smallbiznis/loadstone/internal/migration"
	"github.com/smallbiznis/loadstone/internal/pipeline"
	"github.com/smallbiznis/loadstone/internal/stage"
	"github.com/smallbiznis/loadstone/internal/store"
	"github.com/smallbiznis/loadstone/internal/summary"
	"github.com/smallbiznis/loadstone/internal/warehouse"
	"github.com/smallbiznis/loadstone/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		store.Module,
		migration.Module,

		// Pipeline stages
		batch.Module,
		extract.Module,
		stage.Module,
		warehouse.Module,
		history.Module,
		summary.Module,
		pipeline.Module,

		fx.Invoke(serveMetrics),
		fx.Invoke(run),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// run executes the pipeline once and exits, or keeps ticking on the
// configured cron schedule.
func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, p *pipeline.Pipeline, cfg config.Config, log *zap.Logger) {
	if cfg.CronSchedule != "" {
		sched := pipeline.NewScheduler(p, cfg.CronSchedule, log)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return sched.Start(context.Background())
			},
			OnStop: func(ctx context.Context) error {
				sched.Stop()
				return nil
			},
		})
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := p.RunOnce(context.Background()); err != nil {
					log.Error("run.failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
	})
}

func serveMetrics(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) {
	if cfg.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics.server.failed", zap.Error(err))
				}
			}()
			log.Info("metrics.listening", zap.String("addr", cfg.MetricsAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
