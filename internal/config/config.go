package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"

	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	// placeholderAPIKey is the sample value shipped in old deployment docs.
	placeholderAPIKey = "YOUR_API_KEY_HERE"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Barcode  BarcodeConfig
	Sweep    SweepConfig
	Sheets   SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// DatabaseConfig selects and configures the item repository.
type DatabaseConfig struct {
	Driver      string
	SQLitePath  string
	MongoURI    string
	MongoDBName string
}

// AIConfig holds settings for the recipe text generator.
type AIConfig struct {
	Provider       string
	GeminiKey      string
	GeminiModel    string
	AnthropicKey   string
	AnthropicModel string
	Timeout        time.Duration
}

// BarcodeConfig points at the Open Food Facts API.
type BarcodeConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SweepConfig holds the expiry sweep schedule. An empty schedule disables it.
type SweepConfig struct {
	CronSchedule string
}

// SheetsConfig contains the optional Google Sheets mirror settings.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

// Enabled reports whether the sheet mirror has enough settings to run.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeout, err := time.ParseDuration(getenvWithDefault("UPSTREAM_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			LogLevel:       getenvWithDefault("LOG_LEVEL", "info"),
			Timezone:       getenvWithDefault("TIMEZONE", "Local"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getenvWithDefault("DB_DRIVER", DriverSQLite)),
			SQLitePath:  getenvWithDefault("DB_PATH", defaultSQLitePath()),
			MongoURI:    os.Getenv("MONGODB_URI"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "pantry"),
		},
		AI: AIConfig{
			Provider:       strings.ToLower(getenvWithDefault("AI_PROVIDER", ProviderGemini)),
			GeminiKey:      os.Getenv("GEMINI_API_KEY"),
			GeminiModel:    getenvWithDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel: getenvWithDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			Timeout:        timeout,
		},
		Barcode: BarcodeConfig{
			BaseURL: getenvWithDefault("OFF_BASE_URL", "https://world.openfoodfacts.org"),
			Timeout: timeout,
		},
		Sweep: SweepConfig{
			CronSchedule: getenvWithDefault("EXPIRY_SWEEP_CRON", "0 7 * * *"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
			Range:           getenvWithDefault("SHEETS_RANGE", "Pantry!A:E"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Server.Timezone, err)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case DriverMongoDB:
		if c.Database.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided when DB_DRIVER is mongodb")
		}
		if c.Database.MongoDBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.AI.Provider {
	case ProviderGemini:
		if err := requireAPIKey("GEMINI_API_KEY", c.AI.GeminiKey); err != nil {
			return err
		}
	case ProviderAnthropic:
		if err := requireAPIKey("ANTHROPIC_API_KEY", c.AI.AnthropicKey); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AI.Provider)
	}

	if c.AI.Timeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}

	if c.Barcode.BaseURL == "" {
		return errors.New("OFF_BASE_URL must not be empty")
	}

	if c.Sheets.Enabled() && c.Sheets.Range == "" {
		return errors.New("SHEETS_RANGE must not be empty")
	}

	return nil
}

// Location resolves the timezone used to decide what "today" is.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Server.Timezone)
}

func requireAPIKey(name, value string) error {
	switch strings.TrimSpace(value) {
	case "":
		return fmt.Errorf("%s must be provided", name)
	case placeholderAPIKey:
		return fmt.Errorf("%s is still set to the placeholder value", name)
	}
	return nil
}

// defaultSQLitePath keeps the database in /tmp on Vercel, whose filesystem is
// otherwise read-only.
func defaultSQLitePath() string {
	if os.Getenv("VERCEL") != "" {
		return "/tmp/pantry.db"
	}
	return "pantry.db"
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
