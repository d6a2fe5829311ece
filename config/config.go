// Package config reads the server configuration from environment variables,
// optionally seeded from a .env file in the working directory.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// ThrottleStore selects where per-user access records live.
type ThrottleStore string

const (
	ThrottleStoreDB    ThrottleStore = "db"
	ThrottleStoreRedis ThrottleStore = "redis"
)

const (
	defaultPort      = 8080
	defaultPageLimit = 5
)

// Config is the externally supplied configuration of a server instance.
type Config struct {
	Listen        string
	Port          int
	CertFile      string
	KeyFile       string
	SessionSecret string
	BcryptCost    int
	PageLimit     int
	ThrottleStore ThrottleStore
	RedisAddr     string
	Database      DatabaseConfig
}

// LoadEnvFile loads variables from path into the process environment
// without overriding ones that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("TODO_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("TODO_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("TODO_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/todo"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("TODO_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// Load builds a Config from the environment and validates it.
func Load() (*Config, error) {
	c := &Config{
		Listen:        os.Getenv("TODO_LISTEN"),
		CertFile:      os.Getenv("TODO_CERT_FILE"),
		KeyFile:       os.Getenv("TODO_KEY_FILE"),
		SessionSecret: os.Getenv("TODO_SESSION_SECRET"),
		ThrottleStore: ThrottleStore(os.Getenv("TODO_THROTTLE_STORE")),
		RedisAddr:     os.Getenv("TODO_REDIS_ADDR"),
		Database:      GetDatabaseConfig(),
	}
	var err error
	if c.Port, err = getInt("TODO_PORT", defaultPort); err != nil {
		return nil, err
	}
	if c.BcryptCost, err = getInt("TODO_BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if c.PageLimit, err = getInt("TODO_PAGE_LIMIT", defaultPageLimit); err != nil {
		return nil, err
	}
	if c.ThrottleStore == "" {
		c.ThrottleStore = ThrottleStoreDB
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges. It does not require a session secret in
// debug mode so a throwaway one can be generated by the caller.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.PageLimit <= 0 {
		return fmt.Errorf("page limit must be positive, got %d", c.PageLimit)
	}
	switch c.ThrottleStore {
	case ThrottleStoreDB, ThrottleStoreRedis:
	default:
		return fmt.Errorf("unsupported throttle store: %s", c.ThrottleStore)
	}
	if c.SessionSecret == "" && !IsDebug() {
		return fmt.Errorf("TODO_SESSION_SECRET is required")
	}
	return c.Database.ValidateConfig()
}

func getInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
