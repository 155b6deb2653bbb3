package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all runtime configuration, loaded from a YAML file with
// environment-variable overrides.
type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string        `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	SQLitePath   string        `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"./tictactoe.db"`
	JWTSecretKey string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY" env-default:"dev-only-secret"`
	AbandonGrace time.Duration `yaml:"abandon-grace" env:"ABANDON_GRACE" env-default:"60s"`
	OTLPEndpoint string        `yaml:"otlp-endpoint" env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	Redis        Redis         `yaml:"redis"`
}

// Redis holds the Redis connection settings. An empty host disables Redis.
type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad loads the configuration from path, panicking on failure.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Addr returns the host:port address of the Redis server.
func (r *Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}
