package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var (
	once    sync.Once
	loadErr error
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	Port         string
	DBDriver     string
	DBDSN        string
	BaseURL      string
	LogLevel     string
	LogFormat    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads the .env file once and loads variables into the environment.
// The file is optional; it is looked up in the working directory first and
// then next to the executable. Variables already set in the environment win.
func Load() error {
	once.Do(func() {
		for _, path := range envPaths() {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := godotenv.Load(path); err != nil {
				loadErr = fmt.Errorf("load %s: %w", path, err)
			}
			return
		}
	})
	return loadErr
}

func envPaths() []string {
	paths := []string{".env"}
	if exePath, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exePath), ".env"))
	}
	return paths
}

// Get builds a Config from the environment.
func Get() (Config, error) {
	if err := Load(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:      GetConfigWithDefault("PORT", "10000"),
		DBDriver:  GetConfigWithDefault("DB_DRIVER", "sqlite"),
		DBDSN:     GetConfigWithDefault("DB_DSN", "file:wishcraft.db?cache=shared&mode=rwc"),
		BaseURL:   GetConfig("BASE_URL"),
		LogLevel:  GetConfigWithDefault("LOG_LEVEL", "info"),
		LogFormat: GetConfigWithDefault("LOG_FORMAT", "console"),
	}

	var err error
	if cfg.ReadTimeout, err = seconds("READ_TIMEOUT_SEC", 15); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = seconds("WRITE_TIMEOUT_SEC", 15); err != nil {
		return Config{}, err
	}
	if cfg.IdleTimeout, err = seconds("IDLE_TIMEOUT_SEC", 60); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func seconds(key string, def int) (time.Duration, error) {
	v := GetConfig(key)
	if v == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number of seconds, got %q", key, v)
	}
	return time.Duration(n) * time.Second, nil
}

// GetConfig retrieves a configuration value by key.
// The .env file is loaded only once on the first call.
func GetConfig(key string) string {
	_ = Load()
	return os.Getenv(key)
}

// MustGetConfig retrieves a configuration value and panics if not found.
func MustGetConfig(key string) string {
	val := GetConfig(key)
	if val == "" {
		panic(fmt.Sprintf("required config key %q not found", key))
	}
	return val
}

// GetConfigWithDefault retrieves a config value or returns a default.
func GetConfigWithDefault(key, defaultValue string) string {
	val := GetConfig(key)
	if val == "" {
		return defaultValue
	}
	return val
}
