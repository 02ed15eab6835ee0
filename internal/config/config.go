package config

import (
	"fmt"
	"strings"
	"time"

	"clipit_tycoon/internal/game"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	// App
	AppPort  string `envconfig:"APP_PORT" default:"8080"`
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`

	// Auth
	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL          time.Duration `envconfig:"JWT_TTL" default:"24h"`
	BotToken        string        `envconfig:"BOT_TOKEN"`
	InitDataMaxAge  time.Duration `envconfig:"INIT_DATA_MAX_AGE" default:"24h"`
	GuestLogin      bool          `envconfig:"GUEST_LOGIN" default:"true"`
	CORSAllowOrigin string        `envconfig:"CORS_ALLOW_ORIGIN" default:"*"`

	// Storage
	Storage       string        `envconfig:"STORAGE" default:"memory"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	DBMaxConns    int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	StateTTL      time.Duration `envconfig:"STATE_TTL" default:"0"`

	// Rate limits (requests per window)
	APIRateLimit  int           `envconfig:"API_RATE_LIMIT" default:"120"`
	AuthRateLimit int           `envconfig:"AUTH_RATE_LIMIT" default:"10"`
	GameRateLimit int           `envconfig:"GAME_RATE_LIMIT" default:"60"`
	RateWindow    time.Duration `envconfig:"RATE_WINDOW" default:"1m"`

	// Mini-game balance
	TickInterval time.Duration `envconfig:"GAME_TICK_INTERVAL" default:"50ms"`
	MarkerSpeed  float64       `envconfig:"GAME_MARKER_SPEED" default:"2"`
	ZoneStartMin float64       `envconfig:"GAME_ZONE_START_MIN" default:"20"`
	ZoneStartMax float64       `envconfig:"GAME_ZONE_START_MAX" default:"60"`
	ZoneWidth    float64       `envconfig:"GAME_ZONE_WIDTH" default:"15"`
	Cooldown     time.Duration `envconfig:"GAME_COOLDOWN" default:"30s"`
	ResultDelay  time.Duration `envconfig:"GAME_RESULT_DELAY" default:"1500ms"`
	// 0 means crypto/rand
	RandomSeed int64 `envconfig:"GAME_RANDOM_SEED" default:"0"`

	// Jobs
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	JanitorSchedule    string        `envconfig:"JANITOR_SCHEDULE" default:"@every 10m"`
	BonusSchedule      string        `envconfig:"BONUS_SCHEDULE" default:"@hourly"`
}

// Загрузка конфига из env (.env подхватывается, если есть)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for STORAGE=redis")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORAGE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if !c.GuestLogin && c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required when GUEST_LOGIN is disabled")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be > 0")
	}
	if c.APIRateLimit <= 0 || c.AuthRateLimit <= 0 || c.GameRateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("rate limits must be > 0")
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be > 0")
	}
	if err := c.GameSettings().Validate(); err != nil {
		return fmt.Errorf("game settings: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GameSettings returns the mini-game balance knobs
func (c *Config) GameSettings() game.Settings {
	return game.Settings{
		TickInterval: c.TickInterval,
		Speed:        c.MarkerSpeed,
		ZoneStartMin: c.ZoneStartMin,
		ZoneStartMax: c.ZoneStartMax,
		ZoneWidth:    c.ZoneWidth,
		Cooldown:     c.Cooldown,
		ResultDelay:  c.ResultDelay,
	}
}
