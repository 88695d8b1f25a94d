package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds process configuration, read from the environment with an
// optional .env file for local development.
type Config struct {
	DBPath      string
	Port        string
	UploadsPath string
	// GroupsPath points at a YAML pattern-group table; empty means the
	// built-in defaults.
	GroupsPath string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() Config {
	_ = godotenv.Load()

	dbPath := getenv("BANKBOOKS_DB_PATH", "./data/bankbooks.db")
	return Config{
		DBPath:      dbPath,
		Port:        getenv("PORT", "8080"),
		UploadsPath: getenv("BANKBOOKS_UPLOADS_PATH", filepath.Join(filepath.Dir(dbPath), "uploads")),
		GroupsPath:  os.Getenv("BANKBOOKS_GROUPS_PATH"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
