package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string // dev|prod

	DocumentStoreURL string
	DbHost           string
	DbPort           string
	DbUser           string
	DbPass           string
	DbName           string
	DbSSLMode        string
	MongoDatabase    string

	RedisURL string

	JWTSecret  string
	SessionTTL string

	Log      string
	LogLevel string

	SMTPHost              string
	SMTPPort              string
	SMTPUser              string
	EmailAPIKey           string
	EmailSender           string
	EmailDeliveryRequired bool
	ModeratorEmail        string

	OTPBcryptCost int

	FrontendURL string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует, чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	cost, err := strconv.Atoi(def(os.Getenv("OTP_BCRYPT_COST"), "11"))
	if err != nil {
		return nil, fmt.Errorf("OTP_BCRYPT_COST: %w", err)
	}

	required, err := strconv.ParseBool(def(os.Getenv("EMAIL_DELIVERY_REQUIRED"), "false"))
	if err != nil {
		return nil, fmt.Errorf("EMAIL_DELIVERY_REQUIRED: %w", err)
	}

	cfg := &Config{
		Port: def(os.Getenv("PORT"), "8080"),
		Env:  strings.ToLower(def(os.Getenv("ENV"), "prod")),

		DocumentStoreURL: strings.TrimSpace(os.Getenv("DOCUMENT_STORE_URL")),
		DbHost:           os.Getenv("DB_HOST"),
		DbPort:           def(os.Getenv("DB_PORT"), "5432"),
		DbUser:           os.Getenv("DB_USER"),
		DbPass:           os.Getenv("DB_PASSWORD"),
		DbName:           os.Getenv("DB_NAME"),
		DbSSLMode:        def(os.Getenv("DB_SSLMODE"), "disable"),
		MongoDatabase:    def(os.Getenv("MONGO_DATABASE"), "wallmag"),

		RedisURL: def(os.Getenv("REDIS_URL"), "redis://localhost:6379/0"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: def(os.Getenv("SESSION_TTL"), "24h"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),

		SMTPHost:              def(os.Getenv("SMTP_HOST"), "smtp.sendgrid.net"),
		SMTPPort:              def(os.Getenv("SMTP_PORT"), "587"),
		SMTPUser:              def(os.Getenv("SMTP_USER"), "apikey"),
		EmailAPIKey:           os.Getenv("EMAIL_API_KEY"),
		EmailSender:           os.Getenv("EMAIL_SENDER"),
		EmailDeliveryRequired: required,
		ModeratorEmail:        strings.TrimSpace(os.Getenv("MODERATOR_EMAIL")),

		OTPBcryptCost: cost,

		FrontendURL: os.Getenv("FRONTEND_URL"),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	if c.DocumentStoreURL == "" && (c.DbHost == "" || c.DbUser == "" || c.DbName == "") {
		return nil, fmt.Errorf("incomplete document store config (DOCUMENT_STORE_URL or DB_HOST/DB_USER/DB_NAME)")
	}

	if _, err := time.ParseDuration(c.SessionTTL); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}

	if c.EmailAPIKey == "" || c.EmailSender == "" {
		warnings = append(warnings, "email delivery is not fully configured (EMAIL_API_KEY/EMAIL_SENDER)")
	}

	if c.OTPBcryptCost < 4 || c.OTPBcryptCost > 31 {
		warnings = append(warnings, "OTP_BCRYPT_COST out of range, bcrypt default will be used")
	}

	if c.FrontendURL == "" {
		warnings = append(warnings, "FRONTEND_URL is empty, CORS will reject credentialed requests")
	}

	return warnings, nil
}

// SessionDuration: распарсенный SESSION_TTL (24h при ошибке).
func (c *Config) SessionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// StoreDriver определяет хранилище пользователей по схеме URL: "postgres" или "mongo".
func (c *Config) StoreDriver() string {
	u, err := url.Parse(c.GetDSN())
	if err != nil {
		return "postgres"
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return "mongo"
	default:
		return "postgres"
	}
}

// GetDSN: полная DSN (с паролем)
func (c *Config) GetDSN() string {
	if c.DocumentStoreURL != "" {
		return c.DocumentStoreURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe: DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	u, err := url.Parse(c.GetDSN())
	if err != nil {
		return "<invalid dsn>"
	}
	return u.Redacted()
}

// AllowedOrigins: список origin-ов для CORS из FRONTEND_URL.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, strings.TrimRight(o, "/"))
		}
	}
	return out
}
