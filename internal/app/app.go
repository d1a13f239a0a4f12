package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/compassd/compass/internal/bus"
	"github.com/compassd/compass/internal/config"
	"github.com/compassd/compass/internal/httpserver"
	"github.com/compassd/compass/internal/httpserver/deps"
	"github.com/compassd/compass/internal/logger"
	"github.com/compassd/compass/internal/netcheck"
	"github.com/compassd/compass/internal/prefs"
	"github.com/compassd/compass/internal/redis"
	"github.com/compassd/compass/internal/scheduler"
	"github.com/compassd/compass/internal/store"
	"github.com/compassd/compass/internal/transport"
	"github.com/compassd/compass/internal/updater"
	"github.com/compassd/compass/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	center      *transport.MessageCenter
	refresher   *scheduler.Refresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// User preferences layer on top of the environment.
	userPrefs, err := prefs.Load(cfg.PrefsFile)
	if err != nil {
		loggerClient.Errorf("Failed to load preferences: %v", err)
		os.Exit(1)
	}
	override := cfg.EndpointOverride
	if userPrefs.EndpointOverride != "" {
		override = userPrefs.EndpointOverride
	}
	offline := cfg.OfflineMode || userPrefs.OfflineMode

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	// Directory persistence and the lifetime-scoped cache.
	var st *store.Store
	if cfg.BuiltinFile != "" {
		st = store.NewWithBuiltin(cfg.CacheFile, cfg.BuiltinFile)
	} else {
		st = store.New(cfg.CacheFile)
	}
	cache := store.NewCache(st, loggerClient)

	checker := netcheck.New(offline)

	// Event bus and the message-center bridge over redis pub/sub.
	eventBus := bus.New()
	center := transport.New(redisClient, eventBus, loggerClient,
		cfg.RequestChannel, cfg.DirectoryChannel)

	upd := updater.New(updater.Options{
		Bus:       eventBus,
		Transport: center,
		Store:     st,
		Cache:     cache,
		Oracle:    checker,
		Logger:    loggerClient,
		Override:  override,
		Timeout:   cfg.UpdateTimeout,
	})

	// Manual refresh trigger channel
	refreshTrigger := make(chan struct{}, 1)

	refresher := scheduler.NewRefresher(upd, loggerClient, cfg.RefreshInterval, refreshTrigger)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		Cache:            cache,
		Checker:          checker,
		EndpointOverride: override,
		RefreshTrigger:   refreshTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		center:      center,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting compassd v%s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("compassd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the refresher (runs one refresh immediately, then periodically)
	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start directory refresher: %w", err)
	}
	a.logger.Info("directory refresher started",
		logger.Duration("interval", a.cfg.RefreshInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop the refresher and any in-flight refresh cycle
	a.refresher.Stop()

	if err := a.center.Close(); err != nil {
		a.logger.Warnf("failed to close message center: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ compassd stopped cleanly")
	return nil
}
