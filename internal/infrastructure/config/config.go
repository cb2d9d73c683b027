// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"flightlink-service/pkg/utils"

	"github.com/joho/godotenv"
)

// Store and source backends
const (
	BackendCSV      = "csv"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendSheets   = "sheets"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Files
	InputFile    string
	LinksFile    string
	ListingsFile string
	IATAFile     string

	// Backends
	BatchSource   string
	StoreBackend  string
	AirportSource string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresURI string

	// SQLite
	SQLitePath string

	// Google Sheets
	SheetsSpreadsheetID string
	SheetsRange         string
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRefreshToken  string

	// Browser
	Headless     bool
	UserAgent    string
	BindingsFile string
	PageTimeout  time.Duration

	// Capture
	CaptureWindow         time.Duration
	CaptureRejectPatterns []string

	// Pacing
	NavRatePerSec float64
	NavBurst      int

	// Metrics
	MetricsPort string

	// Defaults
	DefaultOrigin      string
	DefaultDestination string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		InputFile:    getEnv("INPUT_FILE", "multiple_links_input.csv"),
		LinksFile:    getEnv("LINKS_FILE", "generated_links.csv"),
		ListingsFile: getEnv("LISTINGS_FILE", "kayak_flights_data.csv"),
		IATAFile:     getEnv("IATA_FILE", "iata_codes.csv"),

		BatchSource:   getEnv("BATCH_SOURCE", BackendCSV),
		StoreBackend:  getEnv("STORE_BACKEND", BackendCSV),
		AirportSource: getEnv("AIRPORT_SOURCE", BackendCSV),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "flightlink"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		SQLitePath: getEnv("SQLITE_PATH", "flightlink.db"),

		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:         getEnv("SHEETS_RANGE", "Requests!A2:M"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken:  getEnv("GOOGLE_REFRESH_TOKEN", ""),

		Headless:     getEnvAsBool("HEADLESS", false),
		UserAgent:    getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
		BindingsFile: getEnv("BINDINGS_FILE", ""),
		PageTimeout:  time.Duration(getEnvAsInt("PAGE_TIMEOUT_SECONDS", 60)) * time.Second,

		CaptureWindow:         time.Duration(getEnvAsInt("CAPTURE_WINDOW_SECONDS", 7)) * time.Second,
		CaptureRejectPatterns: utils.SplitList(getEnv("CAPTURE_REJECT_PATTERNS", "hotel")),

		NavRatePerSec: getEnvAsFloat("NAV_RATE_PER_SEC", 0.5),
		NavBurst:      getEnvAsInt("NAV_BURST", 1),

		MetricsPort: getEnv("METRICS_PORT", ""),

		DefaultOrigin:      getEnv("DEFAULT_ORIGIN", "ATL"),
		DefaultDestination: getEnv("DEFAULT_DESTINATION", "DXB"),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
