package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataFile string

	DashboardAddr   string
	DashboardTitle  string
	DashboardOutput string
	ShutdownTimeout int

	SnapshotDir     string
	SnapshotWorkers int
	ChromeBin       string
	MaxRetries      int

	Debug bool
}

// Load reads the .env file and returns a populated Config struct.
// The defaults reproduce a plain run against ./Sleepdata.csv.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataFile: getEnv("SLEEP_DATA_FILE", "Sleepdata.csv"),

		DashboardAddr:   lookupEnv("DASHBOARD_ADDR", ":8501"),
		DashboardTitle:  getEnv("DASHBOARD_TITLE", "Sleep Dashboard"),
		DashboardOutput: getEnv("DASHBOARD_OUTPUT", ""),
		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT_SEC", 15),

		SnapshotDir:     getEnv("SNAPSHOT_DIR", ""),
		SnapshotWorkers: getEnvInt("SNAPSHOT_WORKERS", 2),
		ChromeBin:       getEnv("CHROME_BIN", ""),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),

		Debug: getEnvBool("DEBUG", false),
	}
}

// ServeDashboard reports whether the HTTP dashboard should be started.
func (c *Config) ServeDashboard() bool {
	return c.DashboardAddr != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// lookupEnv differs from getEnv in that an explicitly empty value wins over
// the fallback.
func lookupEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
