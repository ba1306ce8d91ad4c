package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

type Config struct {
	Env string

	API       APIConfig
	Timetable TimetableConfig
	Console   ConsoleConfig
	Session   SessionConfig
	Redis     RedisConfig
	Log       LogConfig
	Export    ExportConfig
	Metrics   MetricsConfig
}

// APIConfig points the console at the timetable backend.
type APIConfig struct {
	BaseURL   string
	LoginPath string

	// Timeout of zero leaves upstream calls without a client-side deadline.
	Timeout time.Duration
}

// TimetableConfig carries the fixed grid axes shared with the generator.
type TimetableConfig struct {
	Days      []string
	Timeslots []string
}

// ConsoleConfig configures the web console started by `serve`.
type ConsoleConfig struct {
	Port   int
	Secret string
}

// SessionConfig selects where the upstream session cookie is kept.
type SessionConfig struct {
	Store string
	File  string
	TTL   time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportConfig controls where rendered timetable exports are written.
type ExportConfig struct {
	Dir string

	// Retention of zero keeps exports forever.
	Retention time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL:   strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		LoginPath: v.GetString("LOGIN_PATH"),
		Timeout:   parseDuration(v.GetString("HTTP_TIMEOUT"), 0),
	}

	cfg.Timetable = TimetableConfig{
		Days:      splitAndTrim(v.GetString("TIMETABLE_DAYS")),
		Timeslots: splitAndTrim(v.GetString("TIMETABLE_TIMESLOTS")),
	}

	cfg.Console = ConsoleConfig{
		Port:   v.GetInt("CONSOLE_PORT"),
		Secret: v.GetString("CONSOLE_SECRET"),
	}

	cfg.Session = SessionConfig{
		Store: strings.ToLower(v.GetString("SESSION_STORE")),
		File:  v.GetString("SESSION_FILE"),
		TTL:   parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Export = ExportConfig{
		Dir:       v.GetString("EXPORT_DIR"),
		Retention: parseDuration(v.GetString("EXPORT_RETENTION"), 0),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:5000")
	v.SetDefault("LOGIN_PATH", "/")
	v.SetDefault("HTTP_TIMEOUT", "0s")

	v.SetDefault("TIMETABLE_DAYS", "Mon,Tue,Wed,Thu,Fri")
	v.SetDefault("TIMETABLE_TIMESLOTS", "9-10,10-11,11-12,1-2,2-3")

	v.SetDefault("CONSOLE_PORT", 8090)
	v.SetDefault("CONSOLE_SECRET", "dev_console_secret")

	v.SetDefault("SESSION_STORE", SessionStoreFile)
	v.SetDefault("SESSION_FILE", ".timetable-session.yaml")
	v.SetDefault("SESSION_TTL", "24h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_RETENTION", "0s")
	v.SetDefault("ENABLE_METRICS", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
