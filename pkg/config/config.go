package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHub   GitHubConfig
	Merge    MergeConfig
	Database DatabaseConfig
}

type GitHubConfig struct {
	Token string
}

type MergeConfig struct {
	CITimeout     time.Duration
	RebaseTimeout time.Duration
	Method        string
}

type DatabaseConfig struct {
	Path string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		GitHub: GitHubConfig{
			Token: getEnv("GITHUB_TOKEN", ""),
		},
		Merge: MergeConfig{
			CITimeout:     getEnvAsDuration("CI_TIMEOUT", 30*time.Minute),
			RebaseTimeout: getEnvAsDuration("REBASE_TIMEOUT", 10*time.Minute),
			Method:        getEnv("MERGE_METHOD", "squash"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", defaultDatabasePath()),
		},
	}

	return nil
}

// defaultDatabasePath places the database under the user config directory
func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./gh-renovate.db"
	}
	return filepath.Join(dir, "gh-renovate", "gh-renovate.db")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
