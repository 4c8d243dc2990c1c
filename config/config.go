package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "defaultSecret"

// Config holds application configuration. It is built once at startup and
// handed by pointer to every component that needs it.
type Config struct {
	Port string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBLogLevel string

	JWTSecret    string
	JWTExpiresIn time.Duration
	SaltRound    int

	MailProvider   string // smtp, sendgrid or http
	EmailSender    string
	EmailPassword  string // SMTP password
	SMTPHost       string
	SMTPPort       string
	SendGridAPIKey string
	MailAPIURL     string
	MailAPIKey     string

	AppBaseURL        string // used to build verification links
	UploadDir         string
	MailRetrySchedule string
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	port := getEnv("PORT", "3000")

	expiresIn, err := ParseExpiry(getEnv("JWT_EXPIRES_IN", "1d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		Port: port,

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "coursehub"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiresIn: expiresIn,
		SaltRound:    getEnvInt("SALT_ROUND", 10),

		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", "smtp")),
		EmailSender:    os.Getenv("EMAIL_SENDER"),
		EmailPassword:  os.Getenv("EMAIL_PASSWORD"),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailAPIURL:     os.Getenv("MAIL_API_URL"),
		MailAPIKey:     os.Getenv("MAIL_API_KEY"),

		AppBaseURL:        strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:"+port), "/"),
		UploadDir:         getEnv("UPLOAD_DIR", "./public/uploads"),
		MailRetrySchedule: getEnv("MAIL_RETRY_SCHEDULE", "@every 10m"),
	}

	if err := cfg.validateMail(); err != nil {
		return nil, err
	}

	// Validate critical configuration
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: Using default JWT_SECRET. Update it in your environment.")
	}

	return cfg, nil
}

// validateMail checks that the credentials required by the selected mail
// provider are present.
func (c *Config) validateMail() error {
	if c.EmailSender == "" {
		return fmt.Errorf("EMAIL_SENDER is required")
	}

	switch c.MailProvider {
	case "smtp":
		if c.EmailPassword == "" {
			return fmt.Errorf("EMAIL_PASSWORD is required for the smtp mail provider")
		}
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid mail provider")
		}
	case "http":
		if c.MailAPIURL == "" {
			return fmt.Errorf("MAIL_API_URL is required for the http mail provider")
		}
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}
	return nil
}

// ParseExpiry accepts Go durations ("90m", "12h"), day counts ("1d", "7d")
// and bare numbers, which are read as seconds.
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}

	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
