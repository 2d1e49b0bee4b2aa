// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configPath = pflag.String("config", "config.toml", "Path to the config file")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validDrivers      = []string{"sqlite", "postgres"}
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Host       HostConfig       `mapstructure:"host"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Mail       MailConfig       `mapstructure:"mail"`
	Storage    StorageConfig    `mapstructure:"storage"`
	AWS        AWSConfig        `mapstructure:"aws"`
	Token      TokenConfig      `mapstructure:"token"`
	Account    AccountConfig    `mapstructure:"account"`
	Security   SecurityConfig   `mapstructure:"security"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type HostConfig struct {
	Port   int       `mapstructure:"port"`
	Domain string    `mapstructure:"domain"`
	CORS   []string  `mapstructure:"cors"`
	SSL    SSLConfig `mapstructure:"ssl"`
}

type SSLConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type StorageConfig struct {
	Type       string `mapstructure:"type"`
	UploadDir  string `mapstructure:"upload_dir"`
	ProfileDir string `mapstructure:"profile_dir"`
}

type AWSConfig struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	// Custom endpoint for S3 compatible storage (R2, MinIO, ...)
	Endpoint string `mapstructure:"endpoint"`
}

type TokenConfig struct {
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type AccountConfig struct {
	// How long a new account has to get activated before it's purged. 0 keeps
	// inactive accounts forever.
	ActivationWindow time.Duration `mapstructure:"activation_window"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
}

type SecurityConfig struct {
	RateLimit int   `mapstructure:"rate_limit"`
	BodyLimit int64 `mapstructure:"body_limit"`
}

type CloudflareConfig struct {
	Turnstile TurnstileConfig `mapstructure:"turnstile"`
}

type TurnstileConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	SecretToken string `mapstructure:"secret_token"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Scheme returns the scheme links to this host should use
func (h HostConfig) Scheme() string {
	if h.SSL.Enabled {
		return "https"
	}

	return "http"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)
	v.SetDefault("host.ssl.certificate_path", "")
	v.SetDefault("host.ssl.certificate_key_path", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "My App <info@my-app.com>")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.profile_dir", "profile")

	v.SetDefault("aws.region", "")
	v.SetDefault("aws.bucket", "")
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.endpoint", "")

	v.SetDefault("token.retention", 7*24*time.Hour)
	v.SetDefault("token.cleanup_interval", time.Hour)

	v.SetDefault("account.activation_window", time.Duration(0))
	v.SetDefault("account.cleanup_interval", 24*time.Hour)

	v.SetDefault("security.rate_limit", 0)
	v.SetDefault("security.body_limit", 5<<20)

	v.SetDefault("cloudflare.turnstile.enabled", false)
	v.SetDefault("cloudflare.turnstile.secret_token", "")

	v.SetDefault("metrics.enabled", false)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	pflag.Parse()

	// A missing .env file is fine, real env vars still apply
	_ = godotenv.Load()

	return Load(*configPath)
}

// Load reads the config file at path (if it exists), applies env overrides
// and validates the result. Every key can be overridden by its upper case,
// underscore separated env var, e.g. HOST_PORT for host.port.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("toml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)

			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file, %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if len(c.Host.CORS) == 0 {
		return errors.New("at least one CORS origin is required")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database dsn can't be empty")
	}

	if c.Mail.Host == "" || c.Mail.Port <= 0 {
		return errors.New("invalid mail server provided")
	}

	switch c.Storage.Type {
	case "s3":
		if c.AWS.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.AWS.Region == "" {
			return errors.New("region can't be empty")
		}
	case "local":
		if c.Storage.UploadDir == "" || c.Storage.ProfileDir == "" {
			return errors.New("upload and profile directories can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	if c.Token.Retention <= 0 {
		return errors.New("token retention must be bigger than 0")
	}

	if c.Token.CleanupInterval <= 0 {
		return errors.New("token cleanup interval must be bigger than 0")
	}

	if c.Account.ActivationWindow < 0 {
		return errors.New("account activation window can't be negative")
	}

	if c.Account.ActivationWindow > 0 && c.Account.CleanupInterval <= 0 {
		return errors.New("account cleanup interval must be bigger than 0")
	}

	if c.Cloudflare.Turnstile.Enabled && c.Cloudflare.Turnstile.SecretToken == "" {
		return errors.New("turnstile secret token is missing")
	}

	if !c.Cloudflare.Turnstile.Enabled {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Some public endpoints won't be guarded against bots")
	}

	return nil
}
