package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipit_tycoon/internal/config"
	"clipit_tycoon/internal/db"
	httpServer "clipit_tycoon/internal/http"
	"clipit_tycoon/internal/http/handlers"
	"clipit_tycoon/internal/http/middleware"
	"clipit_tycoon/internal/jobs"
	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/random"
	"clipit_tycoon/internal/repository"
	"clipit_tycoon/internal/service"
	"clipit_tycoon/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	ctx := context.Background()
	checks := make(map[string]handlers.Check)

	// Redis backs the rate limiter whenever it is configured, and the state when STORAGE=redis
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			if cfg.Storage == config.StorageRedis {
				logger.Fatal("redis unavailable", "addr", cfg.RedisAddr, "error", err)
			}
			logger.Warn("redis unavailable, rate limiting is per process", "addr", cfg.RedisAddr, "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
			middleware.UseRedis(rdb)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	var repo repository.StateRepository
	switch cfg.Storage {
	case config.StoragePostgres:
		pool := db.Connect(cfg.DatabaseURL, cfg.DBMaxConns)
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
		checks["database"] = pool.Ping
		repo = repository.NewPgStateRepository(pool)
	case config.StorageRedis:
		repo = repository.NewRedisStateRepository(rdb, cfg.StateTTL)
	default:
		logger.Warn("using in-memory storage, progress is lost on restart")
		repo = repository.NewMemoryStateRepository()
	}

	opts := []service.Option{}
	if cfg.RandomSeed != 0 {
		logger.Warn("deterministic randomness enabled", "seed", cfg.RandomSeed)
		opts = append(opts, service.WithRandom(random.NewSeeded(cfg.RandomSeed)))
	}
	games := service.NewGameService(repo, cfg.GameSettings(), opts...)

	health := handlers.NewHealthHandler(version, games.ActiveSessions)
	for name, check := range checks {
		health.AddCheck(name, check)
	}

	scheduler := jobs.NewScheduler(games, jobs.Config{
		JanitorSpec: cfg.JanitorSchedule,
		BonusSpec:   cfg.BonusSchedule,
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("job scheduler", "error", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors(cfg.CORSAllowOrigin))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	hub := ws.NewHub()
	h := handlers.NewHandler(games, handlers.HandlerConfig{
		BotToken:       cfg.BotToken,
		InitDataMaxAge: cfg.InitDataMaxAge,
		GuestLogin:     cfg.GuestLogin,
		AllowedOrigin:  cfg.CORSAllowOrigin,
	})
	httpServer.RegisterRoutes(r, h, health, hub, httpServer.Limits{
		API:    cfg.APIRateLimit,
		Auth:   cfg.AuthRateLimit,
		Game:   cfg.GameRateLimit,
		Window: cfg.RateWindow,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.Storage, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()
	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// flushes every open session to storage
	games.Close()

	logger.Info("server exited")
}

// CORS for production (frontend on different domain)
func cors(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowOrigin == "*" || origin == allowOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
