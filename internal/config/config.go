package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Pricing  PricingConfig
	Upload   UploadConfig
	Storage  StorageConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SessionConfig struct {
	Secret string
}

// PricingConfig carries the business constants for the pricing engine.
// Tiers maps a minimum distinct-campaign count to a discount rate,
// e.g. "2:0.05,4:0.10,6:0.15".
type PricingConfig struct {
	VATRate string
	Tiers   map[int]string
}

type UploadConfig struct {
	MaxFileSize      int64    // bytes
	MaxFiles         int      // per booking
	AcceptedTypes    []string // MIME patterns, wildcard subtype allowed (image/*)
	GeneratePreviews bool
	SimulateUploads  bool // advance progress on a timer instead of hitting storage
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	Endpoint        string
}

type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Pricing: PricingConfig{
			VATRate: getEnv("VAT_RATE", "0.20"),
			Tiers:   parseDiscountTiers(getEnv("DISCOUNT_TIERS", "2:0.05,4:0.10,6:0.15")),
		},
		Upload: UploadConfig{
			MaxFileSize:      getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 50*1024*1024),
			MaxFiles:         getEnvAsInt("UPLOAD_MAX_FILES", 10),
			AcceptedTypes:    splitAndTrim(getEnv("UPLOAD_ACCEPTED_TYPES", "image/*,video/mp4,application/pdf")),
			GeneratePreviews: getEnvAsBool("UPLOAD_GENERATE_PREVIEWS", true),
			SimulateUploads:  getEnvAsBool("UPLOAD_SIMULATE", false),
		},
		Storage: StorageConfig{
			AccountID:       getEnv("STORAGE_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("STORAGE_BUCKET_NAME", "campaign-creatives"),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
			Region:          getEnv("STORAGE_REGION", "auto"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
		},
		Email: EmailConfig{
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("RESEND_FROM_EMAIL", "bookings@southcoastpromotion.co.uk"),
			FromName:  getEnv("RESEND_FROM_NAME", "SouthCoast ProMotion"),
		},
	}

	return config, nil
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "promotion_bookings"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	config.DBName = strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	config.SSLMode = query.Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

// parseDiscountTiers parses a "minItems:rate" comma list. Malformed
// entries are skipped so a bad env value degrades to fewer tiers rather
// than failing startup.
func parseDiscountTiers(raw string) map[int]string {
	tiers := make(map[int]string)
	for _, part := range strings.Split(raw, ",") {
		pieces := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(pieces) != 2 {
			continue
		}
		minItems, err := strconv.Atoi(strings.TrimSpace(pieces[0]))
		if err != nil || minItems < 0 {
			continue
		}
		rate := strings.TrimSpace(pieces[1])
		if _, err := strconv.ParseFloat(rate, 64); err != nil {
			continue
		}
		tiers[minItems] = rate
	}
	return tiers
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
