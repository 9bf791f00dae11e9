package config

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultBackendURL     = "http://localhost:8080"
	defaultStoreURL       = "https://api.cloudinary.com/v1_1"
	defaultPagesFolder    = "healthmate/pages"
	defaultTokenTTL       = 7 * 24 * time.Hour
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 2 * time.Minute
	defaultLogLevel       = "warn"
)

type Config struct {
	// Remote endpoints
	BackendURL  string `env:"BACKEND_URL"`
	StoreURL    string `env:"STORE_URL"`
	PagesFolder string `env:"PAGES_FOLDER"`

	// Local persistence
	ClientDBPath string        `env:"CLIENT_DB_PATH"`
	TokenFile    string        `env:"TOKEN_FILE"`
	TokenTTL     time.Duration `env:"TOKEN_TTL"`

	// Network timeouts. No step is retried automatically.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	UploadTimeout  time.Duration `env:"UPLOAD_TIMEOUT"`

	LogLevel string `env:"LOG_LEVEL"`
	Version  bool   `env:"-"` // flag only
}

// Warnings receives config problems that do not stop the client.
var Warnings io.Writer = os.Stderr

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		// значения из окружения после ошибочного не читаются, остаются флаги и значения по умолчанию
		fmt.Fprintf(Warnings, "config: invalid environment value, using defaults: %v\n", err)
	}

	flag.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "base URL of the HealthMate API")
	flag.StringVar(&cfg.StoreURL, "store-url", cfg.StoreURL, "base URL of the object store upload API")
	flag.StringVar(&cfg.PagesFolder, "pages-folder", cfg.PagesFolder, "root folder for extracted document pages")
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "path to client SQLite DB")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "lifetime of a stored login")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "timeout of a single API request")
	flag.DurationVar(&cfg.UploadTimeout, "upload-timeout", cfg.UploadTimeout, "timeout of a single file upload attempt")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills empty or invalid values.
func (c *Config) applyDefaults() {
	if !validBaseURL(c.BackendURL) {
		c.BackendURL = defaultBackendURL
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if !validBaseURL(c.StoreURL) {
		c.StoreURL = defaultStoreURL
	}
	c.StoreURL = strings.TrimRight(c.StoreURL, "/")
	c.PagesFolder = strings.Trim(c.PagesFolder, "/")
	if c.PagesFolder == "" {
		c.PagesFolder = defaultPagesFolder
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = defaultUploadTimeout
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = defaultLogLevel
	}

	dir := appDir()
	if c.ClientDBPath == "" {
		c.ClientDBPath = filepath.Join(dir, "client.sqlite")
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(dir, "token")
	}
}

// validBaseURL accepts absolute http(s) URLs only.
func validBaseURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func appDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = os.UserHomeDir()
	}
	return filepath.Join(base, "HealthMate")
}
