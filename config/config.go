/*
Package config loads runtime configuration for the leave engine.

PURPOSE:
Configuration comes from the environment, optionally seeded from a .env
file in the working directory. Command-line flags in cmd/server may
override individual values after Load returns.

KEY VARIABLES:
- APP_ENV       "development" enables pretty console logging
- SERVER_PORT   HTTP listen port (default 8080)
- DB_PATH       sqlite database file (default leave.db)
- JWT_SECRET    HMAC signing key for access tokens
- JWT_TTL       token lifetime (default 24h)
- LOG_LEVEL     zerolog level name (default info)
*/
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// not an error; a malformed one is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	viper.SetDefault("DB_PATH", "leave.db")
	viper.SetDefault("JWT_TTL", 24*time.Hour)
	viper.SetDefault("LOG_LEVEL", "info")

	var cfg Config

	cfg.AppEnv = viper.GetString("APP_ENV")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")

	cfg.Server.Port = viper.GetString("SERVER_PORT")
	cfg.Server.ShutdownTimeout = viper.GetDuration("SERVER_SHUTDOWN_TIMEOUT")

	cfg.Database.Path = viper.GetString("DB_PATH")

	cfg.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.Auth.JWTTTL = viper.GetDuration("JWT_TTL")

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &cfg, nil
}
