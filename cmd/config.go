package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Settings is the service configuration. Every key can be set in the
// environment (WEB_PORT, REDIS_ADDR, ...) or in the YAML file named by
// CONFIG_FILE; the environment wins.
type Settings struct {
	WebPort       string
	RedisAddr     string
	DSN           string
	JWTSecret     string
	Notifications string
	RecipesFile   string
}

func loadSettings() (Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("web_port", "8080")
	v.SetDefault("redis_addr", "")
	v.SetDefault("dsn", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("notifications", "log")
	v.SetDefault("recipes_file", "")
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Settings{}, fmt.Errorf("error reading config file: %w", err)
			}
			log.Printf("Config file %s not found, using environment and defaults", path)
		}
	}

	settings := Settings{
		WebPort:       v.GetString("web_port"),
		RedisAddr:     v.GetString("redis_addr"),
		DSN:           v.GetString("dsn"),
		JWTSecret:     v.GetString("jwt_secret"),
		Notifications: v.GetString("notifications"),
		RecipesFile:   v.GetString("recipes_file"),
	}
	if settings.WebPort == "" {
		return Settings{}, errors.New("web_port must not be empty")
	}
	return settings, nil
}
