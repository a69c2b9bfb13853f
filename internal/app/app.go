package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/repository"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/otp"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/ratelimit"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/handlers"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/storage/postgres"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		func(f *StorefrontFacade) handlers.StorefrontFacade { return f },
		func(s *postgres.Storage) HealthChecker { return s },
		newHTTPServer,
		newInventoryProcessor,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: p.Config.RequestTimeout,
	}
}

type workerParams struct {
	fx.In

	Inventory repository.InventoryRepository
	Guard     *ratelimit.Guard
	Codes     otp.Store
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

func newInventoryProcessor(p workerParams) *worker.InventoryProcessor {
	sweepers := []worker.Sweeper{p.Guard}
	if s, ok := p.Codes.(worker.Sweeper); ok {
		sweepers = append(sweepers, s)
	}
	return worker.NewInventoryProcessor(
		p.Inventory,
		p.Config.InventoryPollInterval,
		p.Config.InventoryBatch,
		p.Config.WorkerPoolSize,
		p.Config.InventoryMaxAttempts,
		p.Logger,
		p.Metrics,
		sweepers...,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.InventoryProcessor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting evshop", slog.String("addr", p.Server.Addr), slog.String("env", p.Config.Environment))
			// the start context ends with OnStart
			p.Worker.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Worker.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("evshop stopped")
			return nil
		},
	})
}
