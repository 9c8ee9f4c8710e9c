package main

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/metrics"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	"github.com/fastygo/taskboard/usecase/account"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	"github.com/fastygo/taskboard/usecase/session"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	sessionStore, err := boltRepo.Open(cfg.Store.Path, cfg.Store.Bucket)
	if err != nil {
		zapLogger.Fatal("failed to open session store", zap.Error(err))
	}
	manager.Register("session_store", func(ctx context.Context) error {
		return sessionStore.Close()
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	mon, err := monitor.New([]monitor.Probe{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		{Name: "session_store", Check: func(context.Context) error { return sessionStore.Ping() }},
	}, collector, cfg.Monitor.Interval, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to schedule health probes", zap.Error(err))
	}
	if cfg.Monitor.Enabled {
		mon.Start(appCtx)
		manager.Register("monitor", mon.Stop)
	} else {
		mon.Refresh(appCtx)
	}

	profileRepo := postgres.NewProfileRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRegistry := redisRepo.NewSessionRegistry(redisClient, cfg.Auth.SessionTTL)
	notifier := redisRepo.NewSessionNotifier(redisClient, cfg.Auth.DeviceID, zapLogger)

	authUseCase := authUC.New(sessionRegistry, sessionStore, notifier, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, zapLogger)
	provisioner := profileUC.New(profileRepo, collector, zapLogger, cfg.Auth.ProvisionTimeout)
	taskUseCase := taskUC.New(taskRepo, profileRepo, collector, zapLogger)

	tracker := session.New(sessionStore, notifier, zapLogger)
	authState := account.New(tracker, provisioner, zapLogger)
	if err := authState.Start(appCtx); err != nil {
		zapLogger.Fatal("failed to start session tracking", zap.Error(err))
	}
	manager.Register("auth_state", func(ctx context.Context) error {
		return authState.Close()
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	taskHandler := apiHandler.NewTaskHandler(taskUseCase, authState, ctxAdapter, zapLogger)
	manager.Register("task_board", func(ctx context.Context) error {
		taskHandler.Close()
		return nil
	})

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Account: apiHandler.NewAccountHandler(authState, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(taskUseCase, authState, ctxAdapter, zapLogger),
		Task:    taskHandler,
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = metrics.Handler(registry)
	}
	if cfg.HTTP.EnablePprof {
		handlers.Pprof = pprofhandler.PprofHandler
	}

	r := router.New(handlers, router.Guards{
		Session: middleware.RequireSession(authState, zapLogger),
		Profile: middleware.RequireProfile(authState, zapLogger),
	})

	server := &fasthttp.Server{
		Handler:      middleware.Metrics(collector)(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("device_id", cfg.Auth.DeviceID))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
