package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/secondhandhub/marketplace/internal/logger"
)

const (
	defaultListenAddr    = "localhost:8000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProduction
	defaultSMTPPort      = 587
	defaultPublicBaseURL = "http://localhost:8000"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the user profile service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Session tokens and email links are signed symmetrically with this key
	SecretKey string

	// Environment
	Environment string

	// SMTP relay used to deliver verification and reset emails
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	// Base URL the links in outgoing emails point at
	PublicBaseURL string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		ListenAddr:    defaultListenAddr,
		Environment:   defaultEnvironment,
		SMTPPort:      defaultSMTPPort,
		PublicBaseURL: defaultPublicBaseURL,
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
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":     setString(&c.ListenAddr),
		"DATABASE_URI":    setString(&c.DatabaseDSN),
		"SECRET_KEY":      setString(&c.SecretKey),
		"LOG_LEVEL":       setString(&c.LogLevel),
		"ENVIRONMENT":     setString(&c.Environment),
		"SMTP_HOST":       setString(&c.SMTPHost),
		"SMTP_PORT":       setInt(&c.SMTPPort),
		"SMTP_USERNAME":   setString(&c.SMTPUsername),
		"SMTP_PASSWORD":   setString(&c.SMTPPassword),
		"EMAIL_FROM":      setString(&c.EmailFrom),
		"PUBLIC_BASE_URL": setString(&c.PublicBaseURL),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("userprofile", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.SMTPHost, "smtp-host", c.SMTPHost, "SMTP relay host")
	fs.IntVar(&c.SMTPPort, "smtp-port", c.SMTPPort, "SMTP relay port")
	fs.StringVar(&c.SMTPUsername, "smtp-username", c.SMTPUsername, "SMTP relay username")
	fs.StringVar(&c.SMTPPassword, "smtp-password", c.SMTPPassword, "SMTP relay password")
	fs.StringVar(&c.EmailFrom, "email-from", c.EmailFrom, "From address for outgoing emails")
	fs.StringVar(&c.PublicBaseURL, "public-base-url", c.PublicBaseURL, "Base URL used in email links")

	return fs.Parse(args)
}
