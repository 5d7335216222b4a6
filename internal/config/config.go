package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of vocabquiz
type Config struct {
	DBType        string
	DatabaseURL   string
	TelegramToken string

	EnableScheduler       bool
	NotificationStartHour int
	NotificationEndHour   int
	PurgeInterval         time.Duration

	GameUsedTTL      time.Duration
	QuizDefaultCount int
	GameDefaultCount int

	LogLevel string
}

// Load reads .env files when present and resolves every setting from the
// environment, falling back to defaults
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is fine, the environment may carry everything
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetDefault("DB_TYPE", "sqlite3")
	v.SetDefault("DATABASE_URL", "data/vocabquiz.db")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("NOTIFICATION_START_HOUR", 4)
	v.SetDefault("NOTIFICATION_END_HOUR", 18)
	v.SetDefault("PURGE_INTERVAL", "30m")
	v.SetDefault("GAME_USED_TTL", "6h")
	v.SetDefault("QUIZ_DEFAULT_COUNT", 10)
	v.SetDefault("GAME_DEFAULT_COUNT", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := &Config{
		DBType:                strings.ToLower(v.GetString("DB_TYPE")),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		TelegramToken:         v.GetString("TELEGRAM_BOT_TOKEN"),
		EnableScheduler:       v.GetBool("ENABLE_SCHEDULER"),
		NotificationStartHour: v.GetInt("NOTIFICATION_START_HOUR"),
		NotificationEndHour:   v.GetInt("NOTIFICATION_END_HOUR"),
		PurgeInterval:         v.GetDuration("PURGE_INTERVAL"),
		GameUsedTTL:           v.GetDuration("GAME_USED_TTL"),
		QuizDefaultCount:      v.GetInt("QUIZ_DEFAULT_COUNT"),
		GameDefaultCount:      v.GetInt("GAME_DEFAULT_COUNT"),
		LogLevel:              v.GetString("LOG_LEVEL"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBType {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.NotificationStartHour < 0 || c.NotificationStartHour > 23 {
		return fmt.Errorf("NOTIFICATION_START_HOUR %d out of range", c.NotificationStartHour)
	}
	if c.NotificationEndHour < 0 || c.NotificationEndHour > 23 {
		return fmt.Errorf("NOTIFICATION_END_HOUR %d out of range", c.NotificationEndHour)
	}
	if c.GameUsedTTL <= 0 {
		return fmt.Errorf("GAME_USED_TTL must be positive")
	}
	if c.QuizDefaultCount < 1 || c.GameDefaultCount < 1 {
		return fmt.Errorf("default question counts must be at least 1")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
