package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set win over file values, and
// missing files are skipped so a bare deployment needs no .env at all.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadWithDotEnv applies LoadDotEnv and then Load.
func LoadWithDotEnv(cfg any, files ...string) error {
	if err := LoadDotEnv(files...); err != nil {
		return err
	}
	return Load(cfg)
}
