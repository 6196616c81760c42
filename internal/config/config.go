package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Host    string
	Port    int
	Root    string
	DataDir string

	// Tokens. AdminToken grants write access, ReadToken read-only access.
	// LegacyToken is an older single-token scheme and is treated as admin.
	AdminToken  string
	ReadToken   string
	LegacyToken string

	LogLevel zerolog.Level
}

// FromEnv builds the config from SKIFF_* environment variables, loading a
// .env file from the working directory first when present.
func FromEnv() Config {
	_ = godotenv.Load()

	host := "0.0.0.0"
	if v := os.Getenv("SKIFF_HOST"); v != "" {
		host = v
	}

	port := 3456
	if v := os.Getenv("SKIFF_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			port = p
		}
	}

	root := os.Getenv("SKIFF_ROOT")
	if root == "" {
		if home, err := os.UserHomeDir(); err == nil {
			root = home
		} else {
			root = "/"
		}
	}
	root, _ = filepath.Abs(root)

	dataDir := os.Getenv("SKIFF_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(root, ".skiff")
	}

	level := zerolog.InfoLevel
	if v := os.Getenv("SKIFF_LOG"); v != "" {
		if l, err := zerolog.ParseLevel(v); err == nil {
			level = l
		}
	}

	return Config{
		Host:        host,
		Port:        port,
		Root:        root,
		DataDir:     dataDir,
		AdminToken:  os.Getenv("SKIFF_ADMIN_TOKEN"),
		ReadToken:   os.Getenv("SKIFF_READ_TOKEN"),
		LegacyToken: os.Getenv("SKIFF_TOKEN"),
		LogLevel:    level,
	}
}

// AuthEnabled reports whether any API token is configured. With no tokens
// set, every request is treated as admin.
func (c Config) AuthEnabled() bool {
	return c.AdminToken != "" || c.ReadToken != "" || c.LegacyToken != ""
}

// DevicesPath is the on-disk location of the device registry.
func (c Config) DevicesPath() string { return filepath.Join(c.DataDir, "devices.json") }

// SettingsPath is the on-disk location of local identity and combo views.
func (c Config) SettingsPath() string { return filepath.Join(c.DataDir, "settings.json") }
