// Package server assembles the taskhub application from its configuration
// and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/handler"
	"github.com/satvikmishra44/taskhub/internal/service"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/logging/observes"
	"github.com/satvikmishra44/taskhub/metrics"
	"github.com/satvikmishra44/taskhub/security/jwt"
	"github.com/satvikmishra44/taskhub/storage"
	"github.com/satvikmishra44/taskhub/version"
)

// App is the assembled application.
type App struct {
	conf    *config.Config
	data    *data.Data
	svc     *service.Service
	metrics *metrics.Collector
	engine  *gin.Engine
	server  *http.Server
}

// New builds the application from conf. The returned cleanup releases
// every resource in reverse order of acquisition.
func New(ctx context.Context, conf *config.Config) (*App, func(), error) {
	if err := conf.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	cleanupLog, err := logger.New(conf.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cleanups = append(cleanups, cleanupLog)
	logger.SetVersion(version.Version)

	if err := setupObserves(ctx, conf, &cleanups); err != nil {
		return fail(err)
	}

	d, cleanupData, err := data.New(ctx, conf.Data)
	if err != nil {
		return fail(fmt.Errorf("failed to create data layer: %w", err))
	}
	cleanups = append(cleanups, cleanupData)

	st, err := storage.NewStorage(conf.Storage)
	if err != nil {
		return fail(fmt.Errorf("failed to create storage: %w", err))
	}

	var denylist jwt.Denylist = jwt.NewMemoryDenylist()
	if rc := d.Redis(); rc != nil {
		denylist = jwt.NewRedisDenylist(rc)
	}

	collector := metrics.New(metrics.DefaultNamespace)
	svc := service.New(&service.Options{
		Data:         d,
		Storage:      st,
		Tokens:       jwt.NewTokenManager(conf.Auth.JWT.Secret, conf.Auth.JWT.Expire),
		Denylist:     denylist,
		Auth:         conf.Auth,
		Attachment:   conf.Attachment,
		PublicPrefix: conf.Storage.PublicPrefix,
		Recorder:     collector,
	})

	if seed := conf.Auth.SeedAdmin; seed != nil && seed.Email != "" && seed.Password != "" {
		if _, _, err := svc.Auth.SeedAdmin(ctx, seed); err != nil {
			return fail(fmt.Errorf("failed to seed admin: %w", err))
		}
	}

	setMode(conf.RunMode)
	h := handler.New(svc, d, handler.Options{
		MaxFileSize:   conf.Attachment.MaxSize,
		UploadsPrefix: conf.Storage.PublicPrefix,
	})

	app := &App{
		conf:    conf,
		data:    d,
		svc:     svc,
		metrics: collector,
		engine:  newRouter(conf, h, collector),
	}
	return app, cleanup, nil
}

func setupObserves(ctx context.Context, conf *config.Config, cleanups *[]func()) error {
	o := conf.Observes
	if o == nil {
		return nil
	}

	if o.Sentry != nil && o.Sentry.Endpoint != "" {
		release := o.Sentry.Release
		if release == "" {
			release = version.Version
		}
		if err := observes.NewSentry(&observes.SentryOptions{
			Dsn:         o.Sentry.Endpoint,
			Name:        conf.AppName,
			Release:     release,
			Environment: o.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("failed to init sentry: %w", err)
		}
		*cleanups = append(*cleanups, func() { observes.FlushSentry(2 * time.Second) })
		logger.Info(ctx, "sentry enabled")
	}

	if o.Tracer != nil && o.Tracer.Endpoint != "" {
		shutdown, err := observes.NewTracer(ctx, &observes.TracerOption{
			URL:           o.Tracer.Endpoint,
			Name:          conf.AppName,
			Version:       version.Version,
			Revision:      version.Revision,
			Environment:   conf.RunMode,
			SamplingRate:  o.Tracer.SamplingRate,
			BatchTimeout:  o.Tracer.BatchTimeout,
			ExportTimeout: o.Tracer.ExportTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to init tracer: %w", err)
		}
		*cleanups = append(*cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn(ctx, "failed to stop tracer", "error", err)
			}
		})
		logger.Info(ctx, "tracing enabled", "endpoint", o.Tracer.Endpoint)
	}
	return nil
}

func setMode(runMode string) {
	switch runMode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(runMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

// Handler returns the HTTP handler of the application
func (a *App) Handler() http.Handler { return a.engine }

// Service returns the business services
func (a *App) Service() *service.Service { return a.svc }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	sc := a.conf.Server
	a.server = &http.Server{
		Addr:              sc.Addr(),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       sc.ReadTimeout,
		WriteTimeout:      sc.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	a.watchConfig(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting server", "addr", sc.Addr(), "version", version.Version)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info(context.Background(), "server exited")
	return nil
}

// watchConfig applies logger level changes from the config file without
// a restart. Other settings take effect on the next start.
func (a *App) watchConfig(ctx context.Context) {
	if a.conf.Viper == nil || a.conf.Viper.ConfigFileUsed() == "" {
		return
	}
	a.conf.Watch(func(next *config.Config) {
		if next.Logger.Level != a.conf.Logger.Level {
			logger.SetLevel(next.Logger.Level)
			logger.Info(ctx, "log level changed", "level", next.Logger.Level)
			a.conf.Logger.Level = next.Logger.Level
		}
	}, func(err error) {
		logger.Warn(ctx, "config reload failed", "error", err)
	})
}
