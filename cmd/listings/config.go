package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/secondhandhub/marketplace/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8001"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultMediaRoot    = "./media"
	defaultMediaBaseURL = "http://localhost:8001/media/"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the listings service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Environment
	Environment string

	// Directory listing images are stored in
	MediaRoot string

	// Base URL the stored images are served from
	MediaBaseURL string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:     defaultLoggingLevel,
		ListenAddr:   defaultListenAddr,
		Environment:  defaultEnvironment,
		MediaRoot:    defaultMediaRoot,
		MediaBaseURL: defaultMediaBaseURL,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":    setString(&c.ListenAddr),
		"DATABASE_URI":   setString(&c.DatabaseDSN),
		"LOG_LEVEL":      setString(&c.LogLevel),
		"ENVIRONMENT":    setString(&c.Environment),
		"MEDIA_ROOT":     setString(&c.MediaRoot),
		"MEDIA_BASE_URL": setString(&c.MediaBaseURL),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("listings", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.MediaRoot, "media-root", c.MediaRoot, "Directory to store listing images")
	fs.StringVar(&c.MediaBaseURL, "media-base-url", c.MediaBaseURL, "Base URL images are served from")

	return fs.Parse(args)
}
