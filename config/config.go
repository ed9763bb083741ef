package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads from the environment
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Pricing  PricingConfig
	Google   GoogleConfig
	Mail     MailConfig
}

type ServerConfig struct {
	Port          string
	Env           string
	JWTSecret     string
	RunMigrations bool
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type PricingConfig struct {
	ConfigPath string
}

type GoogleConfig struct {
	CredentialsFile string
	DriveFolderID   string
	ChromePath      string
}

type MailConfig struct {
	Sender                string
	InternalRecipient     string
	AuthorizationFormPath string
}

// IsProduction reports whether ENV is production
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// DSN returns DATABASE_URL, or a key/value connection string built from the DB_* settings
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode), nil
}

// Load reads .env (outside production) and the process environment
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	if !strings.EqualFold(v.GetString("ENV"), "production") {
		// Overload so the .env file wins over stale shell variables during development
		if err := godotenv.Overload(".env"); err != nil {
			log.Printf("⚠️ Config: .env file not loaded: %v", err)
		}
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PRICING_CONFIG", "config/pricing.json")
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("AUTHORIZATION_FORM_PATH", "templates/credit_card_authorization.pdf")

	_ = v.BindEnv("GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_DRIVE_CREDENTIALS")

	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetString("PORT"),
			Env:           v.GetString("ENV"),
			JWTSecret:     v.GetString("JWT_SECRET"),
			RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Pricing: PricingConfig{
			ConfigPath: v.GetString("PRICING_CONFIG"),
		},
		Google: GoogleConfig{
			CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			DriveFolderID:   v.GetString("DRIVE_FOLDER_ID"),
			ChromePath:      v.GetString("CHROME_PATH"),
		},
		Mail: MailConfig{
			Sender:                v.GetString("MAIL_SENDER"),
			InternalRecipient:     v.GetString("MAIL_INTERNAL_RECIPIENT"),
			AuthorizationFormPath: v.GetString("AUTHORIZATION_FORM_PATH"),
		},
	}

	if cfg.IsProduction() && cfg.Server.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	return cfg, nil
}
