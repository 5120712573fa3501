package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/config"
	"github.com/MrSnakeDoc/marks/internal/httpserver"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/redis"
	"github.com/MrSnakeDoc/marks/internal/scheduler"
	"github.com/MrSnakeDoc/marks/internal/session"
	redisstore "github.com/MrSnakeDoc/marks/internal/store/redis"
	"github.com/MrSnakeDoc/marks/internal/utils"
	"github.com/MrSnakeDoc/marks/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Hub
	reaper      *scheduler.SessionReaper
	importer    *scheduler.BookmarkImporter
}

// ConnectRedis opens the Redis client described by rc, retrying until it
// answers or the connect budget runs out.
func ConnectRedis(ctx context.Context, rc config.RedisConfig, log logger.Logger) (*goredis.Client, error) {
	return redis.Connect(ctx, redis.ConnectOptions{
		Addr:           rc.Addr,
		User:           rc.User,
		Password:       rc.Password,
		DB:             rc.DB,
		DialTimeout:    rc.DialTimeout,
		ReadTimeout:    rc.ReadTimeout,
		WriteTimeout:   rc.WriteTimeout,
		PoolSize:       rc.PoolSize,
		ConnectTimeout: rc.ConnectTimeout,
		RetryInterval:  rc.RetryInterval,
		MaxWait:        rc.MaxWait,
		PingTimeout:    rc.PingTimeout,
		WarnThreshold:  rc.WarnThreshold,
	}, log)
}

func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	// Fail fast if Redis is unavailable
	redisClient, err := ConnectRedis(ctx, cfg.Redis, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store := redisstore.NewStore(redisClient, loggerClient)
	sessions := session.NewHub(store, loggerClient)

	reaper := scheduler.NewSessionReaper(sessions, loggerClient, cfg.ReapInterval, cfg.SessionIdleTTL)

	// Importer is optional
	var importer *scheduler.BookmarkImporter
	var importTrigger chan struct{}
	if cfg.ImportFile != "" {
		loggerClient.Info("bookmark file configured, initializing importer",
			logger.String("file", cfg.ImportFile),
			logger.String("user_id", cfg.ImportUser))
		importTrigger = make(chan struct{}, 1)
		importer = scheduler.NewBookmarkImporter(
			cfg.ImportFile,
			cfg.ImportUser,
			store,
			loggerClient,
			cfg.ImportInterval,
			importTrigger,
		)
	} else {
		loggerClient.Info("bookmark file not configured, importer disabled")
	}

	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		AllowedOrigins:   cfg.AllowedOrigins,
		TrustProxy:       cfg.TrustProxy,
		Tokens:           auth.NewVerifier([]byte(cfg.JWTSecret)),
		Sessions:         sessions,
		Store:            store,
		Location:         cfg.Location,
		RecentWindowDays: cfg.RecentWindowDays,
		ActivityDays:     cfg.ActivityDays,
		RateBurst:        cfg.RateBurst,
		RatePerMin:       cfg.RatePerMin,
		ImportTrigger:    importTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg.ListenPort, d),
		redisClient: redisClient,
		sessions:    sessions,
		reaper:      reaper,
		importer:    importer,
	}, nil
}

// Run serves until SIGINT/SIGTERM or a server failure, then shuts down in
// reverse dependency order.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting marks v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	a.logger.Info("session reaper started",
		logger.Duration("interval", a.cfg.ReapInterval),
		logger.Duration("idle_ttl", a.cfg.SessionIdleTTL))

	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			a.reaper.Stop()
			return fmt.Errorf("failed to start bookmark importer: %w", err)
		}
		a.logger.Info("bookmark importer started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	runErr := g.Wait()
	a.shutdown()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	a.logger.Info("✅ marks stopped cleanly")
	return nil
}

// shutdown stops background work, then releases every live session before
// closing Redis.
func (a *App) shutdown() {
	if a.importer != nil {
		a.importer.Stop()
	}
	a.reaper.Stop()

	utils.CloseLogged(a.sessions, "sessions", a.logger)
	utils.CloseLogged(a.redisClient, "redis", a.logger)
	a.logger.Info("✅ Redis closed")
}
