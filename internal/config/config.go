// Package config loads server configuration from flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Sync    SyncConfig
	Server  ServerConfig
	Summary SummaryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig locates the persisted league document.
type StorageConfig struct {
	DataPath       string        // default ~/DominoPro/data
	DurableDir     string        // badger directory (default {data}/db)
	CachePath      string        // sqlite fallback cache (default {data}/cache.db)
	BackupDir      string        // exported documents (default {data}/backups)
	PersistTimeout time.Duration // bound on one durable+cache write (default 5s)
}

// SyncConfig configures cross-context broadcasting.
type SyncConfig struct {
	ChannelName string // default DOMINO_PRO_SYNC
	BufferSize  int    // per-context queue length (default 64)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // default 8080
	ReadTimeout    time.Duration // default 15s
	WriteTimeout   time.Duration // default 15s
	IdleTimeout    time.Duration // default 60s
	AllowedOrigins []string      // CORS origins (default *)
}

// SummaryConfig bounds the recap generator.
type SummaryConfig struct {
	RequestsPerMinute int           // per client (default 6)
	Timeout           time.Duration // default 10s
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args and resolves every value with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("dominopro", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	// Storage flags
	dataPath := fs.String("data-path", "", "Base path for league data")
	durableDir := fs.String("durable-dir", "", "Durable store directory (default: {data}/db)")
	cachePath := fs.String("cache-path", "", "Fallback cache file (default: {data}/cache.db)")
	backupDir := fs.String("backup-dir", "", "Backup directory (default: {data}/backups)")
	persistTimeout := fs.String("persist-timeout", "", "Timeout for one persist (default: 5s)")

	// Sync flags
	channelName := fs.String("sync-channel", "", "Broadcast channel name (default: DOMINO_PRO_SYNC)")
	bufferSize := fs.String("sync-buffer", "", "Per-context broadcast queue length (default: 64)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")

	// Summary flags
	summaryRPM := fs.String("summary-rpm", "", "Summary requests per minute per client (default: 6)")
	summaryTimeout := fs.String("summary-timeout", "", "Summary generation timeout (default: 10s)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env if it exists. Variables already in the environment win.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath:   getConfigValue(*dataPath, "DATA_PATH", ""),
			DurableDir: getConfigValue(*durableDir, "DURABLE_DIR", ""),
			CachePath:  getConfigValue(*cachePath, "CACHE_PATH", ""),
			BackupDir:  getConfigValue(*backupDir, "BACKUP_DIR", ""),
		},
		Sync: SyncConfig{
			ChannelName: getConfigValue(*channelName, "SYNC_CHANNEL", "DOMINO_PRO_SYNC"),
			BufferSize:  getIntConfigValue(*bufferSize, "SYNC_BUFFER", 64),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
		},
		Summary: SummaryConfig{
			RequestsPerMinute: getIntConfigValue(*summaryRPM, "SUMMARY_RPM", 6),
		},
	}

	durations := []struct {
		flagValue, envKey, def, name string
		dest                         *time.Duration
	}{
		{*persistTimeout, "PERSIST_TIMEOUT", "5s", "persist timeout", &cfg.Storage.PersistTimeout},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout", &cfg.Server.IdleTimeout},
		{*summaryTimeout, "SUMMARY_TIMEOUT", "10s", "summary timeout", &cfg.Summary.Timeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Storage.PersistTimeout <= 0 {
		return errors.New("persist timeout must be positive")
	}

	if c.Sync.ChannelName == "" {
		return errors.New("sync channel name cannot be empty")
	}
	if c.Sync.BufferSize <= 0 {
		return fmt.Errorf("invalid sync buffer size: %d", c.Sync.BufferSize)
	}

	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.Summary.RequestsPerMinute <= 0 {
		return fmt.Errorf("invalid summary rate: %d", c.Summary.RequestsPerMinute)
	}
	if c.Summary.Timeout <= 0 {
		return errors.New("summary timeout must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths resolves the data path and derives the others from it.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	data, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "DominoPro", "data"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = data

	derived := []struct {
		dest *string
		def  string
	}{
		{&c.Storage.DurableDir, filepath.Join(data, "db")},
		{&c.Storage.CachePath, filepath.Join(data, "cache.db")},
		{&c.Storage.BackupDir, filepath.Join(data, "backups")},
	}
	for _, d := range derived {
		expanded, err := expandPath(*d.dest, d.def)
		if err != nil {
			return err
		}
		*d.dest = expanded
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable (includes values loaded from .env).
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
