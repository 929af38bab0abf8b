package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/salesrep/internal/log"
)

type Application struct {
	Env  string `mapstructure:"env"  json:"env"`
	Name string `mapstructure:"name" json:"name"`
}

type Store struct {
	Path        string        `mapstructure:"path"         json:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" json:"busy_timeout"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Channel  string `mapstructure:"channel"  json:"channel"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
	Enabled  bool   `mapstructure:"enabled"  json:"enabled"`
}

type Remote struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Token   string        `mapstructure:"token"    json:"-"`
	Timeout time.Duration `mapstructure:"timeout"  json:"timeout"`
}

type Sync struct {
	Interval       time.Duration `mapstructure:"interval"        json:"interval"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout" json:"refresh_timeout"`
}

type Status struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type Log struct {
	Path string `mapstructure:"path" json:"path"`
}

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Store       `mapstructure:"store"       json:"store"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Remote      `mapstructure:"remote"      json:"remote"`
	Sync        `mapstructure:"sync"        json:"sync"`
	Status      `mapstructure:"status"      json:"status"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Log         `mapstructure:"log"         json:"log"`
}

var (
	once   sync.Once
	config *Config
)

// Get loads the configuration once per process and exits on failure.
func Get(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "config Get").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		logger.Info().Msg("loading config")
		cfg, err := Load(viper.New(), filename, "./env", "$HOME/.salesrep")
		if err != nil {
			err = fmt.Errorf("failed loading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger.Info().Any(log.KeyConfig, cfg).Msg("loaded config")
	})
	return config
}

// Load reads filename.yaml from the given paths. A missing file is not an
// error: defaults and SALESREP_* environment variables still apply.
func Load(v *viper.Viper, filename string, paths ...string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed loading .env with error=%w", err)
	}

	setDefaults(v)
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("salesrep")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed reading config with error=%w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed unmarshaling config with error=%w", err)
	}
	if cfg.Sync.Interval <= 0 {
		return Config{}, fmt.Errorf("sync.interval must be positive, got %s", cfg.Sync.Interval)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.name", "salesrep")
	v.SetDefault("store.path", "salesrep.db")
	v.SetDefault("store.busy_timeout", 5*time.Second)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.channel", "salesrep:store")
	v.SetDefault("remote.base_url", "http://localhost:8080")
	v.SetDefault("remote.timeout", 15*time.Second)
	v.SetDefault("sync.interval", 5*time.Second)
	v.SetDefault("sync.refresh_timeout", 30*time.Second)
	v.SetDefault("status.host", "127.0.0.1")
	v.SetDefault("status.port", 9090)
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
	v.SetDefault("log.path", "")
}
