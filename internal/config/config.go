package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "GBAIRAI"

type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Logger   Logger
	SMTP     SMTP
	Queue    Queue
	Messages Messages
}

type Server struct {
	Addr           string
	RequestTimeout time.Duration
	BaseURL        string
}

type Database struct {
	Driver string
	DSN    string
}

type Auth struct {
	CookieSecret string
}

type Logger struct {
	Level  string
	Format string
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Queue struct {
	RedisURL    string
	Name        string
	Concurrency int
}

type Messages struct {
	MaxLength            int
	TombstonePlaceholder string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.requesttimeout", 10*time.Second)
	v.SetDefault("server.baseurl", "http://localhost:8080")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "gbairai.db")
	v.SetDefault("auth.cookiesecret", "")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@gbairai.local")
	v.SetDefault("queue.redisurl", "")
	v.SetDefault("queue.name", "notifications")
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("messages.maxlength", 4000)
	v.SetDefault("messages.tombstoneplaceholder", "This message was deleted")
}

// LoadConfig reads config/<filename>.yaml when present and layers
// GBAIRAI_* environment variables on top. A .env file in the working
// directory is loaded first; it never overrides variables already set.
func LoadConfig(filename string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment", "name", filename)
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}
	if c.Auth.CookieSecret == "" {
		return nil, errors.New("config: auth.cookiesecret is required")
	}
	return &c, nil
}

func Load(filename string) (*Config, error) {
	v, err := LoadConfig(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(v)
}
