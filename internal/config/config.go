package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jason-s-yu/anima/internal/slate"
)

// Config is the process configuration. Every key maps 1:1 to an environment variable
// of the same name in upper case.
type Config struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	DatabaseURL        string `mapstructure:"database_url"`
	ServiceDatabaseURL string `mapstructure:"service_database_url"`
	DatabaseMaxConns   int32  `mapstructure:"database_max_conns"`
	MigrateOnStart     bool   `mapstructure:"migrate_on_start"`

	SupabaseJWTSecret string `mapstructure:"supabase_jwt_secret"`
	SessionCookie     string `mapstructure:"session_cookie"`
	CronSecret        string `mapstructure:"cron_secret"`
	AllowedOrigins    string `mapstructure:"allowed_origins"`

	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`

	SportsAPIBaseURL string        `mapstructure:"sports_api_base_url"`
	SportsAPIKey     string        `mapstructure:"sports_api_key"`
	SportsAPITimeout time.Duration `mapstructure:"sports_api_timeout"`

	RostersPath string `mapstructure:"rosters_path"`

	PickWinXP     int64 `mapstructure:"pick_win_xp"`
	PickWinPoints int64 `mapstructure:"pick_win_points"`

	SchedulerTargetURL string        `mapstructure:"scheduler_target_url"`
	SchedulerTimezone  string        `mapstructure:"scheduler_timezone"`
	SchedulerHours     string        `mapstructure:"scheduler_hours"`
	SchedulerInterval  time.Duration `mapstructure:"scheduler_interval"`
}

var defaults = map[string]any{
	"port":                 8080,
	"environment":          "development",
	"log_level":            "info",
	"database_url":         "",
	"service_database_url": "",
	"database_max_conns":   10,
	"migrate_on_start":     false,
	"supabase_jwt_secret":  "",
	"session_cookie":       "sb-access-token",
	"cron_secret":          "",
	"allowed_origins":      "http://localhost:3000",
	"redis_addr":           "",
	"redis_db":             0,
	"cache_ttl":            "5m",
	"sports_api_base_url":  "https://api.balldontlie.io/v1",
	"sports_api_key":       "",
	"sports_api_timeout":   "10s",
	"rosters_path":         "public/rosters.json",
	"pick_win_xp":          10,
	"pick_win_points":      5,
	"scheduler_target_url": "http://localhost:8080/api/admin/results/sync",
	"scheduler_timezone":   slate.RomeZone,
	"scheduler_hours":      "8,14,20",
	"scheduler_interval":   "1m",
}

// Load reads .env (if present), then config/config.yaml (optional), then the environment.
// Later sources win.
func Load(configDir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.ServiceDatabaseURL == "" {
		cfg.ServiceDatabaseURL = cfg.DatabaseURL
	}
	return &cfg, nil
}

// Validate checks the keys the server cannot start without.
func (c *Config) Validate() error {
	if c.IsTest() {
		return nil
	}
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.SupabaseJWTSecret == "" {
		missing = append(missing, "SUPABASE_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.PickWinXP < 0 || c.PickWinPoints < 0 {
		return errors.New("PICK_WIN_XP and PICK_WIN_POINTS must be non-negative")
	}
	return nil
}

func (c *Config) IsTest() bool       { return c.Environment == "test" }
func (c *Config) IsProduction() bool { return c.Environment == "production" }

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// Hours parses SCHEDULER_HOURS into hours of the day.
func (c *Config) Hours() ([]int, error) {
	var out []int
	for _, s := range splitList(c.SchedulerHours) {
		h, err := strconv.Atoi(s)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("invalid scheduler hour %q", s)
		}
		out = append(out, h)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
