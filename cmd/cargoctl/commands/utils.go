package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/spf13/viper"
)

// loadConfig reads the config file when present and applies flag and
// environment overrides on top.
func loadConfig() (*config.Config, error) {
	path := viper.GetString("config")

	var cfg *config.Config
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dsn := viper.GetString("dsn"); dsn != "" {
		cfg.Database.URL = dsn
	}
	if driver := viper.GetString("storage"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if uri := viper.GetString("mongo-uri"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if level := viper.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{Level: cfg.Log.Level, Format: logger.FormatText, Output: os.Stderr, Service: "cargoctl"})
}
