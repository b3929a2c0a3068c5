package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	Env         string
	CORSOrigins string

	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	RedisURL        string
	SessionTTL      time.Duration
	JWTSecret       string
	AdminEmail      string
	AdminPassword   string // bcrypt hash
	PostalLookupURL string
	PostalTimeout   time.Duration

	SMTP     SMTPConfig
	Merchant MerchantConfig
}

// SMTPConfig configures the email notifier. An empty Host selects the log notifier.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	AdminNotify string
}

// MerchantConfig describes the payee used for UPI and WhatsApp hand-offs.
type MerchantConfig struct {
	Name     string
	UPIID    string
	WhatsApp string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Addr:        env("APP_ADDR", ":8080"),
		Env:         env("APP_ENV", "development"),
		CORSOrigins: env("CORS_ORIGINS", "*"),

		DatabaseURL:     databaseURL(),
		DBMaxOpenConns:  intEnv("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:  intEnv("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:  durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		RedisURL:        env("REDIS_URL", ""),
		SessionTTL:      durationEnv("SESSION_TTL", 72*time.Hour),
		JWTSecret:       env("JWT_SECRET", ""),
		AdminEmail:      strings.ToLower(env("ADMIN_EMAIL", "")),
		AdminPassword:   env("ADMIN_PASSWORD_HASH", ""),
		PostalLookupURL: env("POSTAL_LOOKUP_URL", "https://api.postalpincode.in"),
		PostalTimeout:   durationEnv("POSTAL_LOOKUP_TIMEOUT", 5*time.Second),

		SMTP: SMTPConfig{
			Host:        env("SMTP_HOST", ""),
			Port:        intEnv("SMTP_PORT", 587),
			Username:    env("SMTP_USERNAME", ""),
			Password:    env("SMTP_PASSWORD", ""),
			From:        env("MAIL_FROM", ""),
			AdminNotify: env("ADMIN_NOTIFY_EMAIL", ""),
		},
		Merchant: MerchantConfig{
			Name:     env("MERCHANT_NAME", "Apparel Shop"),
			UPIID:    env("MERCHANT_UPI_ID", ""),
			WhatsApp: strings.TrimPrefix(env("MERCHANT_WHATSAPP", ""), "+"),
		},
	}
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
// It returns "" when neither is configured.
func databaseURL() string {
	if dsn := env("DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	host := env("DB_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		env("DB_USER", "postgres"),
		env("DB_PASSWORD", "postgres"),
		host,
		env("DB_PORT", "5432"),
		env("DB_NAME", "apparel_shop"),
		env("DB_SSLMODE", "disable"),
	)
}

func env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
