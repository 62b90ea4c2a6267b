package shared

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv          string
	LogLevel        string
	HTTPAddr        string
	MetricsAddr     string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	BackendBase     string
	BackendToken    string
	BackendRPS      int
	Source          string // http | mysql
	Workers         int
	CacheTTL        time.Duration
	DateTZ          string
	AliasesFile     string
	RefreshInterval time.Duration
}

var defaults = map[string]any{
	"app_env":                  "prod",
	"log_level":                "info",
	"http_addr":                ":8080",
	"metrics_addr":             ":9100",
	"mysql_dsn":                "root:root@tcp(localhost:3306)/restoreviews?parseTime=true&charset=utf8mb4&loc=UTC",
	"redis_addr":               "localhost:6379",
	"redis_password":           "",
	"redis_db":                 0,
	"backend_base_url":         "http://localhost:3000/api",
	"backend_token":            "",
	"backend_rps":              5,
	"source":                   "http",
	"mirror_workers":           8,
	"cache_ttl_seconds":        300,
	"date_tz":                  "UTC",
	"aliases_file":             "",
	"refresh_interval_seconds": 300,
}

// Load reads configuration from the environment, optionally layered over
// the file named by CONFIG_FILE (any format viper understands).
func Load() Config {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if f := os.Getenv("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("config file not loaded, using env/defaults")
		}
	}

	c := Config{
		AppEnv:          v.GetString("app_env"),
		LogLevel:        v.GetString("log_level"),
		HTTPAddr:        v.GetString("http_addr"),
		MetricsAddr:     v.GetString("metrics_addr"),
		MySQLDSN:        v.GetString("mysql_dsn"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPass:       v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		BackendBase:     v.GetString("backend_base_url"),
		BackendToken:    v.GetString("backend_token"),
		BackendRPS:      v.GetInt("backend_rps"),
		Source:          strings.ToLower(strings.TrimSpace(v.GetString("source"))),
		Workers:         v.GetInt("mirror_workers"),
		CacheTTL:        time.Duration(v.GetInt("cache_ttl_seconds")) * time.Second,
		DateTZ:          v.GetString("date_tz"),
		AliasesFile:     v.GetString("aliases_file"),
		RefreshInterval: time.Duration(v.GetInt("refresh_interval_seconds")) * time.Second,
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Source != "http" && c.Source != "mysql" {
		log.Warn().Str("source", c.Source).Msg("unknown SOURCE, falling back to http")
		c.Source = "http"
	}
	if c.BackendToken == "" && c.Source == "http" {
		log.Warn().Msg("BACKEND_TOKEN is empty")
	}
	return c
}

// Location resolves DateTZ; unknown zones fall back to UTC.
func (c Config) Location() *time.Location {
	if c.DateTZ == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.DateTZ)
	if err != nil {
		log.Warn().Err(err).Str("tz", c.DateTZ).Msg("unknown DATE_TZ, using UTC")
		return time.UTC
	}
	return loc
}
